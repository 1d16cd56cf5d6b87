// Package obfs2 derives the per-direction AES-256-CTR keystreams of the
// MTProto obfuscated transport from the 64-byte random header a client sends
// at connection start.
//
// Header layout, as produced by a client:
//
//	[0:8]   random
//	[8:40]  client->server key
//	[40:56] client->server IV
//	[56:60] transport tag (0xefefefef for abridged), encrypted
//	[60:62] DC id, little-endian int16, encrypted
//	[62:64] random, encrypted
//
// The server->client key and IV are the same 48 bytes read backwards. The
// whole header is run through the client->server stream, so the first
// payload byte is decrypted at keystream offset 64.
package obfs2
