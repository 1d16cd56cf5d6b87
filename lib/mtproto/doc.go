// Package mtproto defines the two unencrypted MTProto messages exchanged at
// the start of key negotiation: the client's req_pq (or req_pq_multi) and
// the server's resPQ.
//
// Both travel as plaintext MTProto envelopes:
//
//	auth_key_id    int64  (always 0)
//	message_id     int64
//	message_length uint32 (size of everything after this field)
//	body           constructor uint32 + fields
package mtproto
