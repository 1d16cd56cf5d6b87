package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-i2p/go-obfs2/lib/config"
	"github.com/go-i2p/go-obfs2/lib/handshake"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// maxAcceptBackoff caps the retry delay after a failing Accept.
const maxAcceptBackoff = time.Second

// Stats counts connections since the server was created.
type Stats struct {
	Accepted  uint64
	Completed uint64
	Failed    uint64
	Active    int64
}

// Server accepts connections and hands each one to its own goroutine
// running the Handshaker.
type Server struct {
	cfg        config.ServerConfig
	handshaker *handshake.Handshaker
	limiter    *rate.Limiter

	mu       sync.Mutex
	listener net.Listener
	started  bool
	err      error

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	accepted  atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	active    atomic.Int64

	logger *logrus.Entry
}

// New creates a server for cfg. It does not bind the listener.
func New(cfg config.ServerConfig, h *handshake.Handshaker) (*Server, error) {
	if cfg.ListenAddress == "" {
		return nil, config.ErrInvalidListenAddress
	}
	if h == nil {
		return nil, oops.Errorf("handshaker must not be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:        cfg,
		handshaker: h,
		ctx:        ctx,
		cancel:     cancel,
		logger:     logrus.WithField("component", "server"),
	}
	if cfg.AcceptRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), max(cfg.AcceptBurst, 1))
	}
	return s, nil
}

// Start binds the configured address and accepts connections in the
// background until Close is called or the listener fails.
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.cfg.ListenAddress)
	if err != nil {
		return oops.Wrapf(err, "failed to listen on %s", s.cfg.ListenAddress)
	}
	if err := s.attach(l); err != nil {
		l.Close()
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(l); err != nil {
			s.logger.WithError(err).Error("accept loop stopped")
		}
	}()
	return nil
}

// Serve accepts connections on l until Close is called or l is closed by
// someone else. It returns nil after Close.
func (s *Server) Serve(l net.Listener) error {
	if err := s.attach(l); err != nil {
		return err
	}
	return s.acceptLoop(l)
}

func (s *Server) attach(l net.Listener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return ErrServerClosed
	}
	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true
	s.listener = l
	s.logger.WithField("address", l.Addr().String()).Info("listening")
	return nil
}

// Addr returns the bound address, or nil before Start/Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Done is closed once the server stops accepting, either through Close or
// because its listener went away.
func (s *Server) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Err returns the error that stopped the accept loop, or nil if it is still
// running or was stopped by Close.
func (s *Server) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// acceptLoop runs until the listener is closed. Every other Accept error,
// such as EMFILE or ECONNABORTED, is retried after a growing delay.
func (s *Server) acceptLoop(l net.Listener) (err error) {
	defer func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		s.cancel()
	}()

	var backoff time.Duration
	for {
		conn, err := l.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return oops.Wrapf(err, "listener closed")
			}
			backoff = nextBackoff(backoff)
			s.logger.WithError(err).WithField("retry_in", backoff.String()).Warn("accept failed")
			select {
			case <-time.After(backoff):
				continue
			case <-s.ctx.Done():
				return nil
			}
		}
		backoff = 0

		if s.limiter != nil {
			if err := s.limiter.Wait(s.ctx); err != nil {
				conn.Close()
				return nil
			}
		}

		s.accepted.Add(1)
		s.wg.Add(1)
		go s.handle(conn)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return 5 * time.Millisecond
	}
	return min(2*d, maxAcceptBackoff)
}

func (s *Server) handle(conn net.Conn) {
	s.active.Add(1)
	logger := s.logger.WithField("remote", conn.RemoteAddr().String())
	defer func() {
		if r := recover(); r != nil {
			s.failed.Add(1)
			logger.WithField("panic", fmt.Sprint(r)).Error("handshake panicked")
		}
		conn.Close()
		s.active.Add(-1)
		s.wg.Done()
	}()

	// Closing the server unblocks in-flight reads and writes.
	stop := context.AfterFunc(s.ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	dc := &deadlineConn{
		Conn:         conn,
		readTimeout:  s.cfg.ReadTimeout,
		writeTimeout: s.cfg.WriteTimeout,
	}
	result, err := s.handshaker.Run(dc)
	if err != nil {
		s.failed.Add(1)
		logger.WithError(err).WithField("state", result.State.String()).Warn("handshake failed")
		return
	}
	s.completed.Add(1)
	logger.WithFields(logrus.Fields{
		"message_id": result.Response.MessageID,
		"dc":         result.Preamble.DC,
	}).Debug("handshake complete")
}

// Stats returns a snapshot of the connection counters.
func (s *Server) Stats() Stats {
	return Stats{
		Accepted:  s.accepted.Load(),
		Completed: s.completed.Load(),
		Failed:    s.failed.Load(),
		Active:    s.active.Load(),
	}
}

// Close stops accepting, interrupts in-flight handshakes and waits for all
// connection goroutines to return.
func (s *Server) Close() error {
	s.cancel()

	s.mu.Lock()
	l := s.listener
	s.mu.Unlock()

	var listenerErr error
	if l != nil {
		listenerErr = l.Close()
	}
	s.wg.Wait()

	if listenerErr != nil && !errors.Is(listenerErr, net.ErrClosed) {
		return oops.Wrapf(listenerErr, "closing listener")
	}
	return nil
}

// Wait blocks until the server has stopped and every connection goroutine
// has returned.
func (s *Server) Wait() {
	<-s.ctx.Done()
	s.wg.Wait()
}
