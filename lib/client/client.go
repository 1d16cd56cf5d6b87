package client

import (
	"bytes"
	"context"
	"net"
	"time"

	"github.com/go-i2p/crypto/rand"
	"github.com/go-i2p/go-obfs2/lib/mtproto"
	"github.com/go-i2p/go-obfs2/lib/obfs2"
	"github.com/go-i2p/go-obfs2/lib/tl"
	"github.com/go-i2p/go-obfs2/lib/transport/abridged"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// maxResponseSize bounds the resPQ frame a probe will accept.
const maxResponseSize = 64 * 1024

// Options tune a probe. The zero value is usable.
type Options struct {
	// Timeout applies to the whole exchange when ctx carries no deadline.
	Timeout time.Duration
	DC      int16

	// Nonce is sent in the request; a random one is used when zero.
	Nonce mtproto.Nonce
}

// Result is what a successful probe learned.
type Result struct {
	Request  mtproto.PQRequest
	Response mtproto.PQResponse
	RTT      time.Duration
}

// Probe dials addr, sends req_pq_multi over an obfuscated abridged stream
// and returns the decoded resPQ.
func Probe(ctx context.Context, addr string, opts Options) (*Result, error) {
	if addr == "" {
		return nil, ErrNoAddress
	}
	if opts.Timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to dial %s", addr)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return nil, oops.Wrapf(err, "failed to set deadline")
		}
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	return exchange(conn, opts)
}

func exchange(conn net.Conn, opts Options) (*Result, error) {
	nonce := opts.Nonce
	if nonce == (mtproto.Nonce{}) {
		if _, err := rand.Read(nonce[:]); err != nil {
			return nil, oops.Wrapf(err, "failed to generate nonce")
		}
	}

	header, obf, err := obfs2.NewClientHeader(obfs2.TagAbridged, opts.DC)
	if err != nil {
		return nil, err
	}
	req := mtproto.NewPQRequest(time.Now().UnixNano(), nonce)

	// The tag in the header already selects abridged, so no marker byte.
	var out bytes.Buffer
	out.Write(header[:])
	start := time.Now()
	if err := abridged.WriteFrame(&out, abridged.NewServerCodec(), obf, req.Serialize()); err != nil {
		return nil, err
	}
	if _, err := conn.Write(out.Bytes()); err != nil {
		return nil, oops.Wrapf(err, "failed to send req_pq_multi")
	}
	log.WithFields(logger.Fields{
		"remote": conn.RemoteAddr().String(),
		"bytes":  out.Len(),
	}).Debug("sent req_pq_multi")

	payload, err := abridged.ReadFrame(conn, obf, maxResponseSize)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to read resPQ")
	}
	rtt := time.Since(start)

	res, err := mtproto.ParsePQResponse(tl.NewCursor(payload))
	if err != nil {
		return nil, err
	}
	if res.Nonce != nonce {
		return nil, ErrNonceMismatch
	}
	log.WithFields(logger.Fields{
		"message_id": res.MessageID,
		"rtt":        rtt.String(),
	}).Debug("received resPQ")
	return &Result{Request: req, Response: res, RTT: rtt}, nil
}
