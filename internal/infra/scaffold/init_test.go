package scaffold

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/aalvaropc/appserve/internal/infra/config"
)

func TestInitializer_Init_CreatesSiteFiles(t *testing.T) {
	tmp := t.TempDir()

	i := NewInitializer()
	if err := i.Init(domain.SiteSpec{Root: tmp, RootDir: "app"}, false); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	assertFileExists(t, filepath.Join(tmp, "appserve.yaml"))
	assertFileExists(t, filepath.Join(tmp, "app", "index.html"))
	assertFileExists(t, filepath.Join(tmp, ".gitignore"))

	// The scaffolded config must load and point at the scaffolded site.
	cfg, err := config.Load(filepath.Join(tmp, "appserve.yaml"))
	if err != nil {
		t.Fatalf("load scaffolded config: %v", err)
	}
	if cfg.Site.Root != filepath.Join(tmp, "app") {
		t.Fatalf("expected root %s, got %s", filepath.Join(tmp, "app"), cfg.Site.Root)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("scaffolded config invalid: %v", err)
	}
}

func TestInitializer_Init_CustomRootDir(t *testing.T) {
	tmp := t.TempDir()

	if err := NewInitializer().Init(domain.SiteSpec{Root: tmp, RootDir: "public", Prefix: "/static"}, false); err != nil {
		t.Fatalf("Init error: %v", err)
	}

	assertFileExists(t, filepath.Join(tmp, "public", "index.html"))
	if _, err := os.Stat(filepath.Join(tmp, "app")); !os.IsNotExist(err) {
		t.Fatalf("expected no app/ dir, stat err=%v", err)
	}

	b, err := os.ReadFile(filepath.Join(tmp, "appserve.yaml"))
	if err != nil {
		t.Fatalf("read appserve.yaml: %v", err)
	}
	if !strings.Contains(string(b), "root: public\n") {
		t.Fatalf("expected root: public, got:\n%s", b)
	}
	if !strings.Contains(string(b), "prefix: /static\n") {
		t.Fatalf("expected prefix: /static, got:\n%s", b)
	}

	page, err := os.ReadFile(filepath.Join(tmp, "public", "index.html"))
	if err != nil {
		t.Fatalf("read index.html: %v", err)
	}
	if strings.Contains(string(page), "{{") {
		t.Fatalf("unrendered placeholder in index.html:\n%s", page)
	}
}

func TestInitializer_Init_SkipsExistingFilesUnlessForce(t *testing.T) {
	tmp := t.TempDir()

	cfgPath := filepath.Join(tmp, "appserve.yaml")
	if err := os.WriteFile(cfgPath, []byte("custom\n"), 0o644); err != nil {
		t.Fatalf("write existing appserve.yaml: %v", err)
	}

	i := NewInitializer()

	if err := i.Init(domain.SiteSpec{Root: tmp}, false); err != nil {
		t.Fatalf("Init (force=false) error: %v", err)
	}

	b, err := os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read appserve.yaml: %v", err)
	}
	if string(b) != "custom\n" {
		t.Fatalf("expected appserve.yaml preserved, got %q", string(b))
	}

	if err := i.Init(domain.SiteSpec{Root: tmp}, true); err != nil {
		t.Fatalf("Init (force=true) error: %v", err)
	}

	b, err = os.ReadFile(cfgPath)
	if err != nil {
		t.Fatalf("read appserve.yaml after force: %v", err)
	}
	if !strings.Contains(string(b), "appserve:") {
		t.Fatalf("expected appserve.yaml overwritten with template, got %q", string(b))
	}
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file %s, stat err=%v", path, err)
	}
}
