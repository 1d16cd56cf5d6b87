// Package tl implements the fixed-layout primitives of the TL binary encoding
// used by MTProto: little-endian integers, raw 128-bit blocks, length-prefixed
// byte strings padded to 4 bytes, and boxed vectors.
//
// Decoding goes through a forward-only Cursor; encoding appends to a Buffer.
// Every Cursor read fails with ErrTruncatedInput when fewer bytes remain than
// the type needs.
package tl
