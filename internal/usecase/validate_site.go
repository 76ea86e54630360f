package usecase

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/aalvaropc/appserve/internal/domain"
)

type ValidateSite struct {
	stat func(string) (fs.FileInfo, error)
}

func NewValidateSite() *ValidateSite {
	return &ValidateSite{stat: os.Stat}
}

// Execute checks cfg and the files it points at without opening a listener.
// It stops at the first problem.
func (uc *ValidateSite) Execute(ctx context.Context, cfg domain.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := uc.stat(cfg.Site.Root)
	if err != nil {
		return statErr("site.root", cfg.Site.Root, err)
	}
	if !info.IsDir() {
		return &domain.OpError{
			Op:   "validate.site.root",
			Kind: domain.KindInvalidConfig,
			Path: cfg.Site.Root,
			Err:  errors.New("not a directory"),
		}
	}

	index := filepath.Join(cfg.Site.Root, cfg.Site.Index)
	info, err = uc.stat(index)
	if err != nil {
		return statErr("site.index", index, err)
	}
	if !info.Mode().IsRegular() {
		return &domain.OpError{
			Op:   "validate.site.index",
			Kind: domain.KindInvalidConfig,
			Path: index,
			Err:  errors.New("not a regular file"),
		}
	}

	for _, f := range []struct {
		field string
		path  string
	}{
		{"tls.cert_file", cfg.TLS.CertFile},
		{"tls.key_file", cfg.TLS.KeyFile},
		{"tls.ca_file", cfg.TLS.CAFile},
	} {
		if f.path == "" {
			continue
		}
		if _, err := uc.stat(f.path); err != nil {
			return statErr(f.field, f.path, err)
		}
	}

	return nil
}

func statErr(field, path string, err error) error {
	kind := domain.KindExecution
	if errors.Is(err, fs.ErrNotExist) {
		kind = domain.KindNotFound
	}
	return &domain.OpError{Op: "validate." + field, Kind: kind, Path: path, Err: err}
}
