// Package abridged implements the MTProto abridged framing.
//
// A frame is a length in 4-byte units followed by the payload:
//
//	n < 0x7f:  [n] payload(4n)
//	n >= 0x7f: [0x7f] [n:3, little-endian] payload(4n)
//
// A connection opened with this framing starts with a single 0xef marker.
// Over the obfuscated transport the marker is carried in the header tag, so
// the server side never transmits it.
package abridged
