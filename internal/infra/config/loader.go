package config

import (
	"os"
	"path/filepath"

	"github.com/aalvaropc/appserve/internal/domain"
	"gopkg.in/yaml.v3"
)

// Defaults returns the built-in configuration with the site root anchored at baseDir.
func Defaults(baseDir string) domain.Config {
	cfg := domain.DefaultConfig()
	cfg.Site.Root = resolvePath(baseDir, cfg.Site.Root)
	return cfg
}

// Load reads appserve.yaml at path and applies it on top of the defaults.
// Relative paths inside the file are resolved against the file's directory.
func Load(path string) (domain.Config, error) {
	baseDir := filepath.Dir(path)
	cfg := Defaults(baseDir)

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var y YAMLFile
	if err := yaml.Unmarshal(b, &y); err != nil {
		return cfg, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return Apply(cfg, path, baseDir, y.Appserve)
}

// Marshal renders cfg in the appserve.yaml layout.
func Marshal(cfg domain.Config) ([]byte, error) {
	b, err := yaml.Marshal(ToYAML(cfg))
	if err != nil {
		return nil, &domain.OpError{
			Op:   "config.marshal",
			Kind: domain.KindExecution,
			Err:  err,
		}
	}
	return b, nil
}
