// Package handshake drives one obfuscated connection from its random header
// to the resPQ answer.
//
//	AwaitHeader -> AwaitRequest -> BuiltResponse -> Sent
//	      \              \               \
//	       '--------------'---------------'--> Failed
//
// Nothing is written to the connection unless every step before Sent
// succeeded.
package handshake
