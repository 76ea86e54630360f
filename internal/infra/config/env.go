package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/joho/godotenv"
)

const envPrefix = "APPSERVE_"

// LoadDotEnv loads the given .env files into the process environment. Variables
// that are already set win. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	var present []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			present = append(present, p)
		} else if !errors.Is(err, os.ErrNotExist) {
			return &domain.OpError{Op: "config.dotenv", Kind: domain.KindExecution, Path: p, Err: err}
		}
	}
	if len(present) == 0 {
		return nil
	}

	if err := godotenv.Load(present...); err != nil {
		return &domain.OpError{
			Op:   "config.dotenv",
			Kind: domain.KindInvalidConfig,
			Path: strings.Join(present, ","),
			Err:  err,
		}
	}
	return nil
}

// ApplyEnv overlays APPSERVE_* variables read through lookup (os.LookupEnv in
// production). Relative paths are resolved against baseDir.
func ApplyEnv(cfg domain.Config, baseDir string, lookup func(string) (string, bool)) (domain.Config, error) {
	get := func(name string) string {
		v, _ := lookup(envPrefix + name)
		return v
	}

	y := YAMLConfig{
		Server:  YAMLServer{Addr: get("ADDR"), ShutdownTimeout: get("SHUTDOWN_TIMEOUT")},
		Site:    YAMLSite{Root: get("ROOT"), Prefix: get("PREFIX"), Index: get("INDEX")},
		TLS:     YAMLTLS{CertFile: get("TLS_CERT"), KeyFile: get("TLS_KEY"), CAFile: get("TLS_CA")},
		Metrics: YAMLMetrics{Addr: get("METRICS_ADDR")},
		Log:     YAMLLog{Level: get("LOG_LEVEL"), Format: get("LOG_FORMAT"), File: get("LOG_FILE")},
	}

	if raw := strings.TrimSpace(get("HIDE_DOTFILES")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return cfg, invalidField("environment", "APPSERVE_HIDE_DOTFILES", err.Error())
		}
		y.Site.HideDotfiles = &b
	}

	return Apply(cfg, "environment", baseDir, y)
}
