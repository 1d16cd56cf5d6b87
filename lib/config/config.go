package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/go-i2p/go-obfs2/lib/util"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	CfgFile string
	log     = logger.GetGoI2PLogger()
)

const (
	GOOBFS2_BASE_DIR = ".go-obfs2"
	envPrefix        = "GO_OBFS2"
)

// ServerConfig controls the listener.
type ServerConfig struct {
	ListenAddress string        `yaml:"listen_address"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`

	// AcceptRate is the number of connections admitted per second; 0 disables the limit.
	AcceptRate   float64 `yaml:"accept_rate"`
	AcceptBurst  int     `yaml:"accept_burst"`
	MaxFrameSize int     `yaml:"max_frame_size"`
}

// HandshakeConfig selects how much of a request is checked.
type HandshakeConfig struct {
	// StrictTag rejects headers that do not announce the abridged transport.
	StrictTag bool `yaml:"strict_tag"`

	// StrictRequest rejects requests with a non-zero auth key id, an unknown
	// constructor or a wrong message_length.
	StrictRequest bool `yaml:"strict_request"`
}

// ProtocolConfig holds the resPQ constants in their textual form.
type ProtocolConfig struct {
	// ServerNonce is 32 hex characters, or "random" for a value chosen at startup.
	ServerNonce  string  `yaml:"server_nonce"`
	PQ           string  `yaml:"pq"`
	Fingerprints []int64 `yaml:"fingerprints"`
}

// ClockConfig controls the startup clock correction.
type ClockConfig struct {
	// NTPServer is queried once at startup; empty disables the query.
	NTPServer string `yaml:"ntp_server"`
}

// Config is the complete configuration of the server.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Handshake HandshakeConfig `yaml:"handshake"`
	Protocol  ProtocolConfig  `yaml:"protocol"`
	Clock     ClockConfig     `yaml:"clock"`
}

// InitConfig registers defaults and environment bindings and reads the
// configuration file, if any.
func InitConfig() error {
	setDefaults()
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if CfgFile != "" {
		viper.SetConfigFile(CfgFile)
		if err := viper.ReadInConfig(); err != nil {
			return oops.Wrapf(err, "failed to read config file %s", CfgFile)
		}
		log.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
		return nil
	}

	defaultFile := filepath.Join(BuildDirPath(), "config.yaml")
	if !util.CheckFileExists(defaultFile) {
		log.WithField("file", defaultFile).Debug("no config file, using defaults")
		return nil
	}
	viper.SetConfigFile(defaultFile)
	if err := viper.ReadInConfig(); err != nil {
		return oops.Wrapf(err, "failed to read config file %s", defaultFile)
	}
	log.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	return nil
}

func setDefaults() {
	d := Defaults()

	viper.SetDefault("server.listen_address", d.Server.ListenAddress)
	viper.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	viper.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	viper.SetDefault("server.accept_rate", d.Server.AcceptRate)
	viper.SetDefault("server.accept_burst", d.Server.AcceptBurst)
	viper.SetDefault("server.max_frame_size", d.Server.MaxFrameSize)

	viper.SetDefault("handshake.strict_tag", d.Handshake.StrictTag)
	viper.SetDefault("handshake.strict_request", d.Handshake.StrictRequest)

	viper.SetDefault("protocol.server_nonce", d.Protocol.ServerNonce)
	viper.SetDefault("protocol.pq", d.Protocol.PQ)
	viper.SetDefault("protocol.fingerprints", d.Protocol.Fingerprints)

	viper.SetDefault("clock.ntp_server", d.Clock.NTPServer)
}

// CurrentConfig reads the configuration from viper.
func CurrentConfig() *Config {
	var fingerprints []int64
	if err := viper.UnmarshalKey("protocol.fingerprints", &fingerprints); err != nil {
		log.WithError(err).Warn("Error parsing protocol.fingerprints, using defaults")
		fingerprints = Defaults().Protocol.Fingerprints
	}

	return &Config{
		Server: ServerConfig{
			ListenAddress: viper.GetString("server.listen_address"),
			ReadTimeout:   viper.GetDuration("server.read_timeout"),
			WriteTimeout:  viper.GetDuration("server.write_timeout"),
			AcceptRate:    viper.GetFloat64("server.accept_rate"),
			AcceptBurst:   viper.GetInt("server.accept_burst"),
			MaxFrameSize:  viper.GetInt("server.max_frame_size"),
		},
		Handshake: HandshakeConfig{
			StrictTag:     viper.GetBool("handshake.strict_tag"),
			StrictRequest: viper.GetBool("handshake.strict_request"),
		},
		Protocol: ProtocolConfig{
			ServerNonce:  viper.GetString("protocol.server_nonce"),
			PQ:           viper.GetString("protocol.pq"),
			Fingerprints: fingerprints,
		},
		Clock: ClockConfig{
			NTPServer: viper.GetString("clock.ntp_server"),
		},
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.ListenAddress == "" {
		return ErrInvalidListenAddress
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return oops.Errorf("timeouts must not be negative")
	}
	if c.Server.AcceptRate < 0 {
		return oops.Errorf("server.accept_rate must not be negative")
	}
	if c.Server.AcceptRate > 0 && c.Server.AcceptBurst < 1 {
		return oops.Errorf("server.accept_burst must be at least 1 when a rate is set")
	}
	if c.Server.MaxFrameSize < 0 {
		return oops.Errorf("server.max_frame_size must not be negative")
	}
	return nil
}

// Marshal renders the configuration as a YAML document.
func (c *Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to marshal configuration")
	}
	return out, nil
}

// BuildDirPath returns the directory holding the default config file.
func BuildDirPath() string {
	return filepath.Join(util.UserHome(), GOOBFS2_BASE_DIR)
}
