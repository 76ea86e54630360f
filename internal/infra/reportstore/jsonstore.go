package reportstore

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/aalvaropc/appserve/internal/ports"
)

type JSONStore struct {
	dir        string
	writeIndex bool
	now        func() time.Time
}

type Option func(*JSONStore)

// WithIndex enables a simple JSONL index: <dir>/index.jsonl
func WithIndex(enabled bool) Option {
	return func(s *JSONStore) { s.writeIndex = enabled }
}

// WithNow is useful for tests.
func WithNow(now func() time.Time) Option {
	return func(s *JSONStore) { s.now = now }
}

func NewJSONStore(dir string, opts ...Option) *JSONStore {
	s := &JSONStore{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ReportStore = (*JSONStore)(nil)

// SaveReport writes report as <dir>/<started>_<host>.json and returns its id.
func (s *JSONStore) SaveReport(report domain.CheckReport) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", &domain.OpError{
			Op:   "reportstore.mkdir",
			Kind: domain.KindExecution,
			Path: s.dir,
			Err:  err,
		}
	}

	ts := report.StartedAt
	if ts.IsZero() {
		ts = s.now()
	}
	ts = ts.UTC()

	toSave := report
	if toSave.StartedAt.IsZero() {
		toSave.StartedAt = ts
	}

	slug := slugify(hostOf(report.BaseURL))
	if slug == "" {
		slug = "check"
	}

	filename := fmt.Sprintf("%s_%s.json", ts.Format("20060102T150405Z"), slug)
	id := strings.TrimSuffix(filename, ".json")
	path := filepath.Join(s.dir, filename)

	b, err := json.MarshalIndent(toSave, "", "  ")
	if err != nil {
		return "", &domain.OpError{
			Op:   "reportstore.marshal",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	// Atomic-ish write: tmp then rename.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return "", &domain.OpError{
			Op:   "reportstore.write",
			Kind: domain.KindExecution,
			Path: tmp,
			Err:  err,
		}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", &domain.OpError{
			Op:   "reportstore.rename",
			Kind: domain.KindExecution,
			Path: path,
			Err:  err,
		}
	}

	if s.writeIndex {
		_ = s.appendIndex(id, filename, toSave)
	}

	return id, nil
}

func (s *JSONStore) appendIndex(id, filename string, report domain.CheckReport) error {
	type idx struct {
		ID        string    `json:"id"`
		File      string    `json:"file"`
		BaseURL   string    `json:"base_url"`
		Failures  int       `json:"failures"`
		StartedAt time.Time `json:"started_at"`
	}
	line, err := json.Marshal(idx{
		ID:        id,
		File:      filename,
		BaseURL:   report.BaseURL,
		Failures:  report.Failures(),
		StartedAt: report.StartedAt,
	})
	if err != nil {
		return err
	}

	indexPath := filepath.Join(s.dir, "index.jsonl")
	f, err := os.OpenFile(indexPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

func hostOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return baseURL
	}
	return u.Host
}

// slugify produces a safe filename component.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	lastDash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			// any other char -> dash
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}

	return strings.Trim(b.String(), "-")
}
