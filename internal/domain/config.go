package domain

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// Config is the effective appserve configuration after defaults, appserve.yaml,
// environment and flags have been applied.
type Config struct {
	Server  ServerConfig
	Site    SiteConfig
	TLS     TLSConfig
	Metrics MetricsConfig
	Log     LogConfig
}

type ServerConfig struct {
	// Addr is host:port, tcp://host:port, unix:///path or fd:// (systemd activation).
	Addr string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
}

type SiteConfig struct {
	// Root is the directory served under Prefix. Relative roots are resolved
	// against the config file directory by the loader.
	Root   string
	Prefix string
	Index  string

	HideDotfiles bool
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
	CAFile   string
}

type MetricsConfig struct {
	Addr string
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

const (
	DefaultAddr   = "127.0.0.1:8000"
	DefaultRoot   = "app"
	DefaultPrefix = "/app"
	DefaultIndex  = "index.html"
)

// DefaultConfig mirrors the reference deployment: ./app mounted at /app.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:              DefaultAddr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Site: SiteConfig{
			Root:         DefaultRoot,
			Prefix:       DefaultPrefix,
			Index:        DefaultIndex,
			HideDotfiles: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// IndexURL is the redirect target for the site root, e.g. /app/index.html.
func (s SiteConfig) IndexURL() string {
	return s.Prefix + "/" + s.Index
}

func (t TLSConfig) Enabled() bool {
	return t.CertFile != "" || t.KeyFile != ""
}

// NormalizePrefix returns p with a single leading slash and no trailing slash.
func NormalizePrefix(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = path.Clean("/" + p)
	return strings.TrimSuffix(p, "/")
}

var (
	logLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	logFormats = map[string]bool{"json": true, "text": true}
)

// Validate reports the first invalid field as a KindInvalidConfig OpError.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return invalidConfig("server.addr", "address is required")
	}

	timeouts := []struct {
		field string
		d     time.Duration
	}{
		{"server.read_header_timeout", c.Server.ReadHeaderTimeout},
		{"server.read_timeout", c.Server.ReadTimeout},
		{"server.write_timeout", c.Server.WriteTimeout},
		{"server.idle_timeout", c.Server.IdleTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
	}
	for _, t := range timeouts {
		if t.d < 0 {
			return invalidConfig(t.field, "must not be negative")
		}
	}

	if strings.TrimSpace(c.Site.Root) == "" {
		return invalidConfig("site.root", "root directory is required")
	}
	if !strings.HasPrefix(c.Site.Prefix, "/") {
		return invalidConfig("site.prefix", "must start with /")
	}
	if c.Site.Prefix != NormalizePrefix(c.Site.Prefix) {
		return invalidConfig("site.prefix", fmt.Sprintf("%q is not a clean path", c.Site.Prefix))
	}
	if c.Site.Prefix == "" || c.Site.Prefix == "/" {
		return invalidConfig("site.prefix", "must not be the site root")
	}
	idx := c.Site.Index
	if idx == "" || strings.ContainsAny(idx, `/\`) || idx == "." || idx == ".." {
		return invalidConfig("site.index", "must be a bare file name")
	}

	if (c.TLS.CertFile == "") != (c.TLS.KeyFile == "") {
		return invalidConfig("tls", "cert_file and key_file must be set together")
	}
	if c.TLS.CAFile != "" && !c.TLS.Enabled() {
		return invalidConfig("tls.ca_file", "requires cert_file and key_file")
	}

	if c.Metrics.Addr != "" && c.Metrics.Addr == c.Server.Addr {
		return invalidConfig("metrics.addr", "must differ from server.addr")
	}

	if !logLevels[c.Log.Level] {
		return invalidConfig("log.level", fmt.Sprintf("unsupported level %q (expected debug|info|warn|error)", c.Log.Level))
	}
	if !logFormats[c.Log.Format] {
		return invalidConfig("log.format", fmt.Sprintf("unsupported format %q (expected json|text)", c.Log.Format))
	}

	return nil
}

func invalidConfig(field, msg string) error {
	return &OpError{
		Op:   "config.validate",
		Kind: KindInvalidConfig,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, ErrInvalidConfig),
	}
}
