package configfinder

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/aalvaropc/appserve/internal/infra/config"
	"github.com/aalvaropc/appserve/internal/ports"
)

// Finder locates the directory holding appserve.yaml by searching upward.
type Finder struct {
	ConfigFile string // defaults to "appserve.yaml"
}

func NewFinder() *Finder {
	return &Finder{ConfigFile: config.FileName}
}

var _ ports.ConfigLocator = (*Finder)(nil)

func (f *Finder) FindRoot(startDir string) (string, error) {
	if startDir == "" {
		return "", &domain.OpError{
			Op:   "configfinder.findroot",
			Kind: domain.KindInvalidConfig,
			Err:  errors.New("startDir is empty"),
		}
	}

	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", &domain.OpError{
			Op:   "configfinder.findroot",
			Kind: domain.KindExecution,
			Err:  err,
		}
	}

	// A file path searches from its directory.
	info, statErr := os.Stat(abs)
	if statErr == nil && !info.IsDir() {
		abs = filepath.Dir(abs)
	}

	cur := filepath.Clean(abs)
	for {
		cfgPath := filepath.Join(cur, f.ConfigFile)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return cur, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return "", &domain.OpError{
				Op:   "configfinder.findroot",
				Kind: domain.KindNotFound,
				Path: abs,
				Err:  domain.ErrNotFound,
			}
		}
		cur = parent
	}
}

// FindFile returns the full path of the nearest config file above startDir.
func (f *Finder) FindFile(startDir string) (string, error) {
	root, err := f.FindRoot(startDir)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, f.ConfigFile), nil
}
