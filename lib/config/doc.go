// Package config loads the server configuration through viper.
//
// Values come, in increasing precedence, from the built-in defaults, a YAML
// file (the --config flag or $HOME/.go-obfs2/config.yaml when present) and
// GO_OBFS2_* environment variables (server.listen_address becomes
// GO_OBFS2_SERVER_LISTEN_ADDRESS).
//
// The protocol section is turned into Params once at startup. Params is
// read-only afterwards and is shared by every connection.
package config
