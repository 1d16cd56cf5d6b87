package handshake

import (
	"errors"
	"io"

	"github.com/go-i2p/go-obfs2/lib/mtproto"
	"github.com/go-i2p/go-obfs2/lib/obfs2"
	"github.com/go-i2p/go-obfs2/lib/tl"
	"github.com/go-i2p/go-obfs2/lib/transport/abridged"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// Options tune a Handshaker.
type Options struct {
	// MaxFrameSize bounds the request frame in bytes; 0 means no bound.
	MaxFrameSize int

	// StrictTag rejects headers whose tag is not abridged.
	StrictTag bool

	// StrictRequest rejects requests that fail mtproto.PQRequest.Validate.
	StrictRequest bool
}

// Handshaker answers req_pq requests. It holds only read-only state and
// the shared message id generator, so one instance serves every connection.
type Handshaker struct {
	params mtproto.ServerParams
	ids    *mtproto.MessageIDGenerator
	opts   Options
}

// NewHandshaker returns a Handshaker answering with params. A nil ids gets a
// generator reading the unadjusted clock.
func NewHandshaker(params mtproto.ServerParams, ids *mtproto.MessageIDGenerator, opts Options) *Handshaker {
	if ids == nil {
		ids = mtproto.NewMessageIDGenerator(nil)
	}
	return &Handshaker{params: params, ids: ids, opts: opts}
}

// Result describes how far a connection got.
type Result struct {
	State    State
	Preamble obfs2.Preamble
	Request  mtproto.PQRequest
	Response mtproto.PQResponse

	// Written is the number of response bytes handed to the connection.
	Written int
}

// conn is the per-connection state. It is owned by a single goroutine.
type conn struct {
	rw     io.ReadWriter
	h      *Handshaker
	obf    *obfs2.Obfuscator
	result Result

	// frame is the encrypted resPQ, set on entry to StateBuiltResponse.
	frame []byte
}

// Run drives rw through the handshake. It returns the final Result even on
// failure; the error carries one of ErrTruncatedInput, ErrMalformedRequest,
// ErrIO or ErrUnsupportedTransport.
func (h *Handshaker) Run(rw io.ReadWriter) (*Result, error) {
	c := &conn{rw: rw, h: h}
	steps := map[State]func() error{
		StateAwaitHeader:   c.awaitHeader,
		StateAwaitRequest:  c.awaitRequest,
		StateBuiltResponse: c.send,
	}
	for !c.result.State.Terminal() {
		from := c.result.State
		if err := steps[from](); err != nil {
			c.result.State = StateFailed
			log.WithError(err).WithField("state", from.String()).Debug("handshake failed")
			return &c.result, err
		}
		log.WithFields(logger.Fields{
			"from": from.String(),
			"to":   c.result.State.String(),
		}).Debug("handshake transition")
	}
	return &c.result, nil
}

func (c *conn) awaitHeader() error {
	var header obfs2.Header
	if _, err := io.ReadFull(c.rw, header[:]); err != nil {
		return readError(err, "header")
	}
	obf, preamble, err := obfs2.NewServerObfuscator(header)
	if err != nil {
		return oops.Errorf("%w: %w", ErrMalformedRequest, err)
	}
	c.result.Preamble = preamble
	if c.h.opts.StrictTag && preamble.Tag != obfs2.TagAbridged {
		return oops.Wrapf(ErrUnsupportedTransport, "tag %#08x", preamble.Tag)
	}
	c.obf = obf
	c.result.State = StateAwaitRequest
	return nil
}

func (c *conn) awaitRequest() error {
	payload, err := abridged.ReadFrame(c.rw, c.obf, c.h.opts.MaxFrameSize)
	if err != nil {
		if errors.Is(err, abridged.ErrFrameTooLarge) {
			return oops.Errorf("%w: %w", ErrMalformedRequest, err)
		}
		return readError(err, "request frame")
	}

	req, err := mtproto.ParsePQRequest(tl.NewCursor(payload))
	if err != nil {
		return err
	}
	if c.h.opts.StrictRequest {
		if err := req.Validate(); err != nil {
			return err
		}
	}
	log.WithFields(logger.Fields{
		"payload_length": len(payload),
		"message_id":     req.MessageID,
		"magic":          req.Magic,
	}).Debug("parsed req_pq")
	c.result.Request = req

	res := mtproto.GeneratePQResponse(req.Nonce, c.h.params, c.h.ids)
	frame, err := abridged.NewServerCodec().AppendFrame(nil, res.Serialize())
	if err != nil {
		return oops.Wrapf(err, "failed to frame resPQ")
	}
	c.obf.Encrypt(frame)
	c.result.Response = res
	c.frame = frame
	c.result.State = StateBuiltResponse
	return nil
}

func (c *conn) send() error {
	n, err := c.rw.Write(c.frame)
	c.result.Written = n
	if err != nil {
		return writeError(err)
	}
	log.WithFields(logger.Fields{
		"message_id": c.result.Response.MessageID,
		"bytes":      n,
	}).Debug("sent resPQ")
	c.result.State = StateSent
	return nil
}
