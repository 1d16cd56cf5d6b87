// Package server accepts obfuscated connections and runs the handshake on
// each one in its own goroutine.
//
// Every connection owns its cipher states and buffers; the only values
// shared between goroutines are the read-only protocol parameters and the
// message id generator. A failure, including a panic, ends only the
// connection it happened on.
package server
