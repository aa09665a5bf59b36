package irc

import (
	"crypto/tls"
	"io"
	"net"

	"github.com/BurntSushi/toml"
	"golang.org/x/time/rate"
)

// Config is an optional TOML-loadable description of a Client, for programs that would rather
// keep connection settings in a file than build a Client literal by hand. It is sugar on top of
// Client construction, not a required path: &Client{...} (as used throughout this package's own
// tests) remains fully supported.
type Config struct {
	// URI is a server address as accepted by ParseURI, e.g. "ircs://irc.example.com:6697".
	URI string `toml:"uri"`

	Nickname string `toml:"nickname"`
	User     string `toml:"user"`
	Realname string `toml:"realname"`
	Pass     string `toml:"pass"`

	// InsecureSkipVerify disables TLS certificate verification for "ircs"/"irc6s" URIs. It
	// exists for connecting to networks with self-signed certificates during development and
	// should not be used against a production network.
	InsecureSkipVerify bool `toml:"insecure_skip_verify"`

	AutoReconnect bool `toml:"auto_reconnect"`

	// FloodLimit bounds outgoing messages per second; zero disables rate limiting.
	FloodLimit float64 `toml:"flood_limit"`

	CTCPVersion    string `toml:"ctcp_version"`
	CTCPSource     string `toml:"ctcp_source"`
	CTCPClientInfo string `toml:"ctcp_client_info"`
}

// LoadConfig reads and parses a TOML configuration file at path.
func LoadConfig(path string) (*Config, error) {
	cfg := new(Config)
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewClient builds a Client from the configuration. The returned Client has not yet connected;
// call ConnectAndRun to begin the registration handshake.
func (cfg *Config) NewClient() (*Client, error) {
	dial, err := ParseURI(cfg.URI)
	if err != nil {
		return nil, err
	}

	c := &Client{
		Addr:          dial.Addr,
		Nickname:      cfg.Nickname,
		User:          cfg.User,
		Realname:      cfg.Realname,
		Pass:          cfg.Pass,
		AutoReconnect: cfg.AutoReconnect,
		CTCPReplies: CTCPReplies{
			Version:    cfg.CTCPVersion,
			Source:     cfg.CTCPSource,
			ClientInfo: cfg.CTCPClientInfo,
		},
	}
	if cfg.FloodLimit > 0 {
		c.FloodLimit = rate.Limit(cfg.FloodLimit)
	}

	if dial.TLS && cfg.InsecureSkipVerify {
		addr := dial.Addr
		c.DialFn = func() (io.ReadWriteCloser, error) {
			return tls.Dial("tcp", addr, &tls.Config{InsecureSkipVerify: true})
		}
	} else if !dial.TLS {
		addr := dial.Addr
		c.DialFn = func() (io.ReadWriteCloser, error) {
			return net.Dial("tcp", addr)
		}
	}

	return c, nil
}

