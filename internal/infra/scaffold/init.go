package scaffold

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/aalvaropc/appserve/internal/ports"
)

//go:embed templates
var templatesFS embed.FS

type Initializer struct{}

func NewInitializer() *Initializer {
	return &Initializer{}
}

var _ ports.SiteInitializer = (*Initializer)(nil)

// Init writes appserve.yaml and a starter site under spec.Root, filling the
// {{root}} and {{prefix}} placeholders. Existing files are left alone unless
// force is set.
func (i *Initializer) Init(spec domain.SiteSpec, force bool) error {
	root := filepath.Clean(spec.Root)
	siteDir := spec.RootDir
	if strings.TrimSpace(siteDir) == "" {
		siteDir = domain.DefaultRoot
	}
	prefix := spec.Prefix
	if strings.TrimSpace(prefix) == "" {
		prefix = domain.DefaultPrefix
	}
	vars := map[string]string{"root": siteDir, "prefix": prefix}

	if err := os.MkdirAll(filepath.Join(root, siteDir), 0o755); err != nil {
		return initErr(root, err)
	}

	if err := ensureGitignore(root); err != nil {
		return initErr(root, err)
	}

	err := fs.WalkDir(templatesFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel := strings.TrimPrefix(p, "templates/")
		if dir, rest, ok := strings.Cut(rel, "/"); ok && dir == domain.DefaultRoot {
			rel = siteDir + "/" + rest
		}
		dst := filepath.Join(root, filepath.FromSlash(rel))

		if !force {
			if _, statErr := os.Stat(dst); statErr == nil {
				return nil
			}
		}

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}

		b, err := fs.ReadFile(templatesFS, p)
		if err != nil {
			return err
		}
		out, err := renderString(string(b), vars)
		if err != nil {
			return err
		}

		return os.WriteFile(dst, []byte(out), 0o644)
	})
	if err != nil {
		return initErr(root, err)
	}
	return nil
}

func initErr(root string, err error) error {
	return &domain.OpError{Op: "scaffold.init", Kind: domain.KindExecution, Path: root, Err: err}
}

func ensureGitignore(root string) error {
	const header = "# appserve"
	entries := []string{
		".env",
		".appserve/",
		"*.sock",
	}

	path := filepath.Join(root, ".gitignore")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			lines := append([]string{header}, entries...)
			lines = append(lines, "")
			return os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644)
		}
		return err
	}

	existing := string(b)
	present := map[string]bool{}
	for _, line := range strings.Split(existing, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		present[trimmed] = true
	}

	var missing []string
	for _, e := range entries {
		if !present[e] {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	var out strings.Builder
	out.Grow(len(existing) + 64)

	out.WriteString(existing)
	if existing != "" && !strings.HasSuffix(existing, "\n") {
		out.WriteByte('\n')
	}
	out.WriteByte('\n')
	if !present[header] {
		out.WriteString(header)
		out.WriteByte('\n')
	}
	for _, e := range missing {
		out.WriteString(e)
		out.WriteByte('\n')
	}

	return os.WriteFile(path, []byte(out.String()), 0o644)
}
