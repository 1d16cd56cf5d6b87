package server

import "errors"

var (
	// ErrServerClosed is returned when starting a server that was closed.
	ErrServerClosed = errors.New("server is closed")

	// ErrAlreadyStarted is returned when Start or Serve is called twice.
	ErrAlreadyStarted = errors.New("server already started")
)
