package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/aalvaropc/appserve/internal/infra/config"
	"github.com/aalvaropc/appserve/internal/infra/configfinder"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// configFlags are shared by every command that needs the effective config.
// Only flags set on the command line override file and environment values.
type configFlags struct {
	configPath string
	debug      bool

	addr        string
	root        string
	prefix      string
	index       string
	metricsAddr string

	tlsCert string
	tlsKey  string
	tlsCA   string

	logLevel  string
	logFormat string
	logFile   string
}

func (f *configFlags) bind(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to appserve.yaml (default: nearest appserve.yaml above the working directory)")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging with source locations")

	fs.StringVar(&f.addr, "addr", "", "Listen address: host:port, unix:///path or fd:// (default "+domain.DefaultAddr+")")
	fs.StringVar(&f.root, "root", "", "Directory to serve (default ./"+domain.DefaultRoot+")")
	fs.StringVar(&f.prefix, "prefix", "", "URL prefix the root is mounted at (default "+domain.DefaultPrefix+")")
	fs.StringVar(&f.index, "index", "", "Index file name (default "+domain.DefaultIndex+")")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this separate address")

	fs.StringVar(&f.tlsCert, "tls-cert", "", "TLS certificate file")
	fs.StringVar(&f.tlsKey, "tls-key", "", "TLS private key file")
	fs.StringVar(&f.tlsCA, "tls-ca", "", "CA bundle used to verify client certificates")

	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	fs.StringVar(&f.logFormat, "log-format", "", "Log format: json|text")
	fs.StringVar(&f.logFile, "log-file", "", "Write logs to this file instead of stderr")
}

// overrides turns the flags that were set on cmd into a config overlay.
func (f *configFlags) overrides(fs *pflag.FlagSet) config.YAMLConfig {
	pick := func(name, v string) string {
		if fs.Changed(name) {
			return v
		}
		return ""
	}
	return config.YAMLConfig{
		Server: config.YAMLServer{Addr: pick("addr", f.addr)},
		Site: config.YAMLSite{
			Root:   pick("root", f.root),
			Prefix: pick("prefix", f.prefix),
			Index:  pick("index", f.index),
		},
		TLS: config.YAMLTLS{
			CertFile: pick("tls-cert", f.tlsCert),
			KeyFile:  pick("tls-key", f.tlsKey),
			CAFile:   pick("tls-ca", f.tlsCA),
		},
		Metrics: config.YAMLMetrics{Addr: pick("metrics-addr", f.metricsAddr)},
		Log: config.YAMLLog{
			Level:  pick("log-level", f.logLevel),
			Format: pick("log-format", f.logFormat),
			File:   pick("log-file", f.logFile),
		},
	}
}

type settings struct {
	cfg domain.Config
	// source is the appserve.yaml that was loaded, or "" when running on defaults.
	source  string
	baseDir string
}

// loadSettings resolves the effective config:
// defaults < appserve.yaml < .env / APPSERVE_* < flags.
func loadSettings(cmd *cobra.Command, f *configFlags) (settings, error) {
	wd, err := os.Getwd()
	if err != nil {
		return settings{}, fmt.Errorf("get working directory: %w", err)
	}

	source, err := resolveConfigPath(f.configPath, wd)
	if err != nil {
		return settings{}, err
	}

	var (
		cfg     domain.Config
		baseDir = wd
	)
	if source != "" {
		baseDir = filepath.Dir(source)
		cfg, err = config.Load(source)
		if err != nil {
			return settings{}, err
		}
	} else {
		cfg = config.Defaults(wd)
	}

	if err := config.LoadDotEnv(filepath.Join(baseDir, ".env")); err != nil {
		return settings{}, err
	}
	cfg, err = config.ApplyEnv(cfg, wd, os.LookupEnv)
	if err != nil {
		return settings{}, err
	}

	cfg, err = config.Apply(cfg, "flags", wd, f.overrides(cmd.Flags()))
	if err != nil {
		return settings{}, err
	}

	if err := cfg.Validate(); err != nil {
		return settings{}, err
	}

	return settings{cfg: cfg, source: source, baseDir: baseDir}, nil
}

// resolveConfigPath returns the explicit --config path, or the nearest
// appserve.yaml above wd, or "" when there is none.
func resolveConfigPath(flag, wd string) (string, error) {
	if p := strings.TrimSpace(flag); p != "" {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("invalid config path: %w", err)
		}
		return abs, nil
	}

	p, err := configfinder.NewFinder().FindFile(wd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return p, nil
}
