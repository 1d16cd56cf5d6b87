// Package client performs the bootstrap handshake from the client side. It
// is used by the probe command to check a running server.
package client
