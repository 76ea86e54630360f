package server

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/aalvaropc/appserve/internal/domain"
	"gotest.tools/v3/assert"
)

const (
	indexHTML = "<!doctype html><html><body><canvas id=\"design-layer\"></canvas></body></html>\n"
	mainJS    = "import { GameMap } from \"./modules/map.js\"\n"
	secret    = "top-secret-outside-root"
)

// siteFixture lays out:
//
//	<tmp>/secret.txt
//	<tmp>/app/index.html
//	<tmp>/app/js/main.js
//	<tmp>/app/empty/
//	<tmp>/app/docs/index.html
//	<tmp>/app/.env
type siteFixture struct {
	outer string
	root  string
}

func newSiteFixture(t *testing.T) siteFixture {
	t.Helper()

	outer := t.TempDir()
	root := filepath.Join(outer, "app")

	files := map[string]string{
		filepath.Join(outer, "secret.txt"):              secret,
		filepath.Join(root, "index.html"):               indexHTML,
		filepath.Join(root, "js", "main.js"):            mainJS,
		filepath.Join(root, "docs", "index.html"):       "<html>docs</html>",
		filepath.Join(root, ".env"):                     "TOKEN=" + secret,
		filepath.Join(root, "styles", "site.css"):       "body{}",
		filepath.Join(root, "img", "logo.svg"):          "<svg/>",
		filepath.Join(root, "modules", "common.js"):     "export const x = 1\n",
		filepath.Join(root, "data", "grid.json"):        "{}",
		filepath.Join(root, "fonts", "readme.txt"):      "fonts",
		filepath.Join(root, "nested", "deep", "a.html"): "<p>a</p>",
	}
	for p, content := range files {
		assert.NilError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		assert.NilError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	assert.NilError(t, os.MkdirAll(filepath.Join(root, "empty"), 0o755))

	return siteFixture{outer: outer, root: root}
}

func testConfig(root string) domain.Config {
	cfg := domain.DefaultConfig()
	cfg.Site.Root = root
	return cfg
}

func noRedirectClient() *http.Client {
	return &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
