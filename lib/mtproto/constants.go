package mtproto

// Constructor ids.
const (
	ReqPQMultiConstructor uint32 = 0xbe7e8ef1
	ReqPQConstructor      uint32 = 0x60469778
	ResPQConstructor      uint32 = 0x05162463
)

const (
	// NonceSize is the size of nonce and server_nonce.
	NonceSize = 16
	// envelopeSize covers auth_key_id, message_id and message_length.
	envelopeSize = 8 + 8 + 4
	// pqRequestBodySize is the constructor plus the nonce.
	pqRequestBodySize = 4 + NonceSize
	// PQRequestSize is the full encoded size of a req_pq envelope.
	PQRequestSize = envelopeSize + pqRequestBodySize
)

// Nonce is a 128-bit value chosen by one side and echoed by the other.
type Nonce [NonceSize]byte
