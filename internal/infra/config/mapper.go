package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aalvaropc/appserve/internal/domain"
)

// Apply overlays the non-empty fields of y on top of cfg. Relative paths are
// resolved against baseDir. path is only used for error reporting.
func Apply(cfg domain.Config, path, baseDir string, y YAMLConfig) (domain.Config, error) {
	if s := strings.TrimSpace(y.Server.Addr); s != "" {
		cfg.Server.Addr = s
	}

	durations := []struct {
		field string
		raw   string
		dst   *time.Duration
	}{
		{"server.read_header_timeout", y.Server.ReadHeaderTimeout, &cfg.Server.ReadHeaderTimeout},
		{"server.read_timeout", y.Server.ReadTimeout, &cfg.Server.ReadTimeout},
		{"server.write_timeout", y.Server.WriteTimeout, &cfg.Server.WriteTimeout},
		{"server.idle_timeout", y.Server.IdleTimeout, &cfg.Server.IdleTimeout},
		{"server.shutdown_timeout", y.Server.ShutdownTimeout, &cfg.Server.ShutdownTimeout},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.raw) == "" {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return cfg, invalidField(path, d.field, err.Error())
		}
		*d.dst = v
	}

	if s := strings.TrimSpace(y.Site.Root); s != "" {
		cfg.Site.Root = resolvePath(baseDir, s)
	}
	if s := strings.TrimSpace(y.Site.Prefix); s != "" {
		p := domain.NormalizePrefix(s)
		if p == "" {
			return cfg, invalidField(path, "site.prefix", "must not be the site root")
		}
		cfg.Site.Prefix = p
	}
	if s := strings.TrimSpace(y.Site.Index); s != "" {
		cfg.Site.Index = s
	}
	if y.Site.HideDotfiles != nil {
		cfg.Site.HideDotfiles = *y.Site.HideDotfiles
	}

	if s := strings.TrimSpace(y.TLS.CertFile); s != "" {
		cfg.TLS.CertFile = resolvePath(baseDir, s)
	}
	if s := strings.TrimSpace(y.TLS.KeyFile); s != "" {
		cfg.TLS.KeyFile = resolvePath(baseDir, s)
	}
	if s := strings.TrimSpace(y.TLS.CAFile); s != "" {
		cfg.TLS.CAFile = resolvePath(baseDir, s)
	}

	if s := strings.TrimSpace(y.Metrics.Addr); s != "" {
		cfg.Metrics.Addr = s
	}

	if s := strings.TrimSpace(y.Log.Level); s != "" {
		cfg.Log.Level = strings.ToLower(s)
	}
	if s := strings.TrimSpace(y.Log.Format); s != "" {
		cfg.Log.Format = strings.ToLower(s)
	}
	if s := strings.TrimSpace(y.Log.File); s != "" {
		cfg.Log.File = resolvePath(baseDir, s)
	}

	return cfg, nil
}

// ToYAML maps an effective config back into the file layout.
func ToYAML(cfg domain.Config) YAMLFile {
	hide := cfg.Site.HideDotfiles
	return YAMLFile{Appserve: YAMLConfig{
		Server: YAMLServer{
			Addr:              cfg.Server.Addr,
			ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout.String(),
			ReadTimeout:       cfg.Server.ReadTimeout.String(),
			WriteTimeout:      cfg.Server.WriteTimeout.String(),
			IdleTimeout:       cfg.Server.IdleTimeout.String(),
			ShutdownTimeout:   cfg.Server.ShutdownTimeout.String(),
		},
		Site: YAMLSite{
			Root:         cfg.Site.Root,
			Prefix:       cfg.Site.Prefix,
			Index:        cfg.Site.Index,
			HideDotfiles: &hide,
		},
		TLS: YAMLTLS{
			CertFile: cfg.TLS.CertFile,
			KeyFile:  cfg.TLS.KeyFile,
			CAFile:   cfg.TLS.CAFile,
		},
		Metrics: YAMLMetrics{Addr: cfg.Metrics.Addr},
		Log: YAMLLog{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			File:   cfg.Log.File,
		},
	}}
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(baseDir, p)
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "config.map",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
