package config

import "time"

// ConfigDefaults holds every default value in one place.
type ConfigDefaults struct {
	Server    ServerConfig
	Handshake HandshakeConfig
	Protocol  ProtocolConfig
	Clock     ClockConfig
}

// Defaults returns the built-in configuration. The protocol values are the
// ones the server has always answered with: server nonce 0x1337 as a
// little-endian 128-bit integer, pq 0x17ED48941A08F981 as little-endian bytes
// and the single fingerprint 0xd09d1d85de64fd85.
func Defaults() ConfigDefaults {
	return ConfigDefaults{
		Server: ServerConfig{
			ListenAddress: "127.0.0.1:11337",
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  30 * time.Second,
			AcceptRate:    0,
			AcceptBurst:   64,
			MaxFrameSize:  4096,
		},
		Handshake: HandshakeConfig{
			StrictTag:     false,
			StrictRequest: true,
		},
		Protocol: ProtocolConfig{
			ServerNonce:  "37130000000000000000000000000000",
			PQ:           "81f9081a9448ed17",
			Fingerprints: []int64{-3414540481677951611},
		},
		Clock: ClockConfig{
			NTPServer: "",
		},
	}
}
