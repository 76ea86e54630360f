package server

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/moby/sys/symlink"
)

// SiteHandler serves files below a root directory. The mount prefix must
// already be stripped from the request path.
//
// It never lists directories, never resolves outside root (symlinks included)
// and serves "<dir>/index.html" requests as-is, unlike http.FileServer which
// redirects them to "<dir>/".
type SiteHandler struct {
	root         string
	index        string
	hideDotfiles bool
	log          *slog.Logger
}

type SiteOption func(*SiteHandler)

// WithIndex sets the file served for directory requests. Defaults to index.html.
func WithIndex(name string) SiteOption {
	return func(h *SiteHandler) { h.index = name }
}

// WithHideDotfiles answers 404 for any path segment starting with a dot.
func WithHideDotfiles(hide bool) SiteOption {
	return func(h *SiteHandler) { h.hideDotfiles = hide }
}

func WithSiteLogger(l *slog.Logger) SiteOption {
	return func(h *SiteHandler) {
		if l != nil {
			h.log = l
		}
	}
}

// NewSiteHandler resolves root to an absolute, symlink-free directory.
func NewSiteHandler(root string, opts ...SiteOption) (*SiteHandler, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &domain.OpError{Op: "site.root", Kind: domain.KindInvalidConfig, Path: root, Err: err}
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		kind := domain.KindExecution
		if errors.Is(err, fs.ErrNotExist) {
			kind = domain.KindNotFound
		}
		return nil, &domain.OpError{Op: "site.root", Kind: kind, Path: root, Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &domain.OpError{Op: "site.root", Kind: domain.KindExecution, Path: abs, Err: err}
	}
	if !info.IsDir() {
		return nil, &domain.OpError{
			Op:   "site.root",
			Kind: domain.KindInvalidConfig,
			Path: abs,
			Err:  errors.New("not a directory"),
		}
	}

	h := &SiteHandler{
		root:         abs,
		index:        domain.DefaultIndex,
		hideDotfiles: true,
		log:          slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Root is the resolved directory being served.
func (h *SiteHandler) Root() string { return h.root }

func (h *SiteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upath := r.URL.Path
	if !strings.HasPrefix(upath, "/") {
		upath = "/" + upath
	}

	if err := h.checkPath(upath); err != nil {
		h.fail(w, r, err)
		return
	}
	name := path.Clean(upath)

	f, info, err := h.open(name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer f.Close()

	if info.IsDir() {
		// Keep relative links inside the directory's index working.
		if !strings.HasSuffix(r.URL.Path, "/") {
			localRedirect(w, r, path.Base(r.URL.Path)+"/")
			return
		}

		idx, idxInfo, err := h.open(path.Join(name, h.index))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		defer idx.Close()
		f, info = idx, idxInfo
	}

	if !info.Mode().IsRegular() {
		h.fail(w, r, &domain.OpError{Op: "site.open", Kind: domain.KindNotFound, Path: name, Err: fs.ErrNotExist})
		return
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// checkPath rejects traversal segments outright and hides dotfiles when asked.
func (h *SiteHandler) checkPath(upath string) error {
	if strings.ContainsRune(upath, 0) {
		return &domain.OpError{Op: "site.path", Kind: domain.KindForbidden, Err: domain.ErrForbidden}
	}
	if filepath.Separator != '/' && strings.ContainsRune(upath, filepath.Separator) {
		return &domain.OpError{Op: "site.path", Kind: domain.KindForbidden, Err: domain.ErrForbidden}
	}

	for _, seg := range strings.Split(upath, "/") {
		if seg == ".." {
			return &domain.OpError{Op: "site.path", Kind: domain.KindForbidden, Err: domain.ErrForbidden}
		}
		if h.hideDotfiles && len(seg) > 1 && seg[0] == '.' {
			return &domain.OpError{Op: "site.path", Kind: domain.KindNotFound, Err: fs.ErrNotExist}
		}
	}
	return nil
}

// open resolves name (slash-separated, rooted) inside h.root. Symlinks are
// evaluated as if h.root were the filesystem root, so a link pointing outside
// lands inside root instead.
func (h *SiteHandler) open(name string) (*os.File, fs.FileInfo, error) {
	full := filepath.Join(h.root, filepath.FromSlash(name))
	resolved, err := symlink.FollowSymlinkInScope(full, h.root)
	if err != nil {
		return nil, nil, &domain.OpError{Op: "site.resolve", Kind: domain.KindNotFound, Path: name, Err: err}
	}

	f, err := os.Open(resolved)
	if err != nil {
		return nil, nil, &domain.OpError{Op: "site.open", Kind: domain.KindOf(err), Path: name, Err: err}
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, &domain.OpError{Op: "site.stat", Kind: domain.KindOf(err), Path: name, Err: err}
	}
	return f, info, nil
}

func (h *SiteHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	h.log.Debug("site.miss", "path", r.URL.Path, "status", code, "err", err)
	// Never echo filesystem details to the client.
	http.Error(w, http.StatusText(code), code)
}

func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// localRedirect issues a relative 301, preserving the query string.
func localRedirect(w http.ResponseWriter, r *http.Request, newPath string) {
	if q := r.URL.RawQuery; q != "" {
		newPath += "?" + q
	}
	w.Header().Set("Location", newPath)
	w.WriteHeader(http.StatusMovedPermanently)
}
