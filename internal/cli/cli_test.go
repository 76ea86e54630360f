package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/aalvaropc/appserve/internal/infra/config"
	"github.com/aalvaropc/appserve/internal/server"
)

// --- command wiring ---

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Use] = true
	}
	for _, expected := range []string{"serve", "init", "validate", "config", "check", "version"} {
		if !names[expected] {
			t.Errorf("expected subcommand %q to be registered", expected)
		}
	}
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, flag := range []string{
		"config", "debug", "addr", "root", "prefix", "index", "metrics-addr",
		"tls-cert", "tls-key", "tls-ca", "log-level", "log-format", "log-file",
	} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("expected --%s persistent flag", flag)
		}
	}
}

func TestCheckCmd_Flags(t *testing.T) {
	cmd := checkCmd(&configFlags{})
	if cmd.Use != "check" {
		t.Errorf("expected Use=check, got %q", cmd.Use)
	}
	for _, flag := range []string{"url", "format", "timeout", "ca-file", "insecure", "save", "save-dir"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("expected --%s flag on check command", flag)
		}
	}
}

func TestInitCmd_Flags(t *testing.T) {
	cmd := initCmd()
	if cmd.Flags().Lookup("path") == nil {
		t.Error("expected --path flag on init command")
	}
	if cmd.Flags().Lookup("force") == nil {
		t.Error("expected --force flag on init command")
	}
}

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "appserve dev") {
		t.Fatalf("unexpected version output %q", buf.String())
	}
}

// --- baseURLFor ---

func TestBaseURLFor(t *testing.T) {
	cases := []struct {
		addr    string
		tls     bool
		want    string
		wantErr bool
	}{
		{addr: "127.0.0.1:8000", want: "http://127.0.0.1:8000"},
		{addr: ":8080", want: "http://127.0.0.1:8080"},
		{addr: "0.0.0.0:80", want: "http://127.0.0.1:80"},
		{addr: "[::]:8443", tls: true, want: "https://127.0.0.1:8443"},
		{addr: "tcp://localhost:9000", want: "http://localhost:9000"},
		{addr: "unix:///run/appserve.sock", wantErr: true},
		{addr: "fd://", wantErr: true},
		{addr: "nonsense", wantErr: true},
	}
	for _, c := range cases {
		cfg := domain.DefaultConfig()
		cfg.Server.Addr = c.addr
		if c.tls {
			cfg.TLS.CertFile, cfg.TLS.KeyFile = "c.pem", "k.pem"
		}
		got, err := baseURLFor(cfg)
		if c.wantErr {
			if err == nil {
				t.Errorf("baseURLFor(%q): expected error, got %q", c.addr, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("baseURLFor(%q): unexpected error %v", c.addr, err)
			continue
		}
		if got != c.want {
			t.Errorf("baseURLFor(%q) = %q, want %q", c.addr, got, c.want)
		}
	}
}

// --- printCheck ---

func sampleReport() domain.CheckReport {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return domain.CheckReport{
		BaseURL:   "http://127.0.0.1:8000",
		StartedAt: start,
		EndedAt:   start.Add(15 * time.Millisecond),
		Results: []domain.ProbeResult{
			{
				Name:       "root.redirect",
				Method:     "GET",
				StatusCode: 301,
				LatencyMS:  1,
				Checks: []domain.CheckOutcome{
					{Name: "status", Passed: true, Message: "status 301"},
					{Name: "location", Passed: true, Message: "location /app/index.html"},
				},
			},
			{
				Name:   "index.ok",
				Method: "GET",
				Error:  &domain.ProbeError{Kind: domain.ProbeErrorConn, Message: "connection refused"},
			},
		},
	}
}

func TestPrintCheck_JSON_ValidOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := printCheck(&buf, sampleReport(), "abc123", "json"); err != nil {
		t.Fatalf("printCheck error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, buf.String())
	}
	if decoded["report_id"] != "abc123" {
		t.Errorf("expected report_id=abc123, got %v", decoded["report_id"])
	}
	if _, ok := decoded["report"]; !ok {
		t.Error("expected report key in output")
	}
}

func TestPrintCheck_Pretty(t *testing.T) {
	var buf bytes.Buffer
	if err := printCheck(&buf, sampleReport(), "rep-1", "pretty"); err != nil {
		t.Fatalf("printCheck error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Target: http://127.0.0.1:8000",
		"Report:   rep-1",
		"root.redirect (GET) 1ms",
		"status: 301",
		"✓ status",
		"index.ok",
		"error: connection refused (connection)",
		"2 probe(s), 1 failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestPrintCheck_EmptyFormat_IsPretty(t *testing.T) {
	var buf bytes.Buffer
	if err := printCheck(&buf, domain.CheckReport{}, "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "0 probe(s), 0 failed") {
		t.Errorf("expected summary line, got:\n%s", buf.String())
	}
}

func TestPrintCheck_UnknownFormat_ReturnsError(t *testing.T) {
	var buf bytes.Buffer
	err := printCheck(&buf, domain.CheckReport{}, "", "xml")
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !strings.Contains(err.Error(), "xml") {
		t.Errorf("expected error to mention format, got %v", err)
	}
}

// --- config resolution ---

func TestResolveConfigPath_Explicit(t *testing.T) {
	tmp := t.TempDir()
	p := filepath.Join(tmp, "custom.yaml")
	got, err := resolveConfigPath(p, "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != p {
		t.Errorf("expected %q, got %q", p, got)
	}
}

func TestResolveConfigPath_NoneFound(t *testing.T) {
	got, err := resolveConfigPath("", t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("expected no config, got %q", got)
	}
}

func TestResolveConfigPath_FindsParent(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, config.FileName)
	if err := os.WriteFile(cfgPath, []byte("appserve: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sub := filepath.Join(tmp, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := resolveConfigPath("", sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != cfgPath {
		t.Errorf("expected %q, got %q", cfgPath, got)
	}
}

// run executes the root command with args in dir and returns stdout.
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	chdir(t, dir)

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func initSite(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	if _, err := run(t, tmp, "init", "--path", tmp); err != nil {
		t.Fatalf("init: %v", err)
	}
	return tmp
}

func TestInitThenValidate(t *testing.T) {
	tmp := initSite(t)

	for _, p := range []string{"appserve.yaml", filepath.Join("app", "index.html"), ".gitignore"} {
		if _, err := os.Stat(filepath.Join(tmp, p)); err != nil {
			t.Fatalf("expected %s after init: %v", p, err)
		}
	}

	out, err := run(t, tmp, "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if strings.TrimSpace(out) != "OK" {
		t.Fatalf("expected OK, got %q", out)
	}
}

func TestValidate_MissingIndexFails(t *testing.T) {
	tmp := initSite(t)
	if err := os.Remove(filepath.Join(tmp, "app", "index.html")); err != nil {
		t.Fatal(err)
	}

	_, err := run(t, tmp, "validate")
	if !domain.IsKind(err, domain.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConfig_Precedence(t *testing.T) {
	tmp := initSite(t)

	// file < .env < environment < flags
	if err := os.WriteFile(filepath.Join(tmp, ".env"), []byte("APPSERVE_INDEX=home.html\nAPPSERVE_PREFIX=/from-dotenv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"APPSERVE_INDEX", "APPSERVE_PREFIX"} {
		t.Setenv(k, "restore")
		if err := os.Unsetenv(k); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("APPSERVE_ADDR", "127.0.0.1:7000")

	out, err := run(t, tmp, "config", "--prefix", "/static")
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	for _, want := range []string{
		"# source: " + filepath.Join(tmp, config.FileName),
		"addr: 127.0.0.1:7000",
		"prefix: /static",
		"index: home.html",
		"root: " + filepath.Join(tmp, "app"),
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestConfig_InvalidFlagRejected(t *testing.T) {
	tmp := initSite(t)
	_, err := run(t, tmp, "config", "--log-format", "xml")
	if !domain.IsKind(err, domain.KindInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestCheck_AgainstRunningServer(t *testing.T) {
	tmp := initSite(t)

	cfg, err := config.Load(filepath.Join(tmp, config.FileName))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	srv, err := server.New(cfg, nil)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	out, err := run(t, tmp, "check", "--url", ts.URL, "--save")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "0 failed") {
		t.Fatalf("expected no failures, got:\n%s", out)
	}

	entries, err := os.ReadDir(filepath.Join(tmp, ".appserve", "checks"))
	if err != nil {
		t.Fatalf("read report dir: %v", err)
	}
	if len(entries) != 2 { // report + index.jsonl
		t.Fatalf("expected report and index, got %d entries", len(entries))
	}
}

func TestCheck_FailsAgainstWrongServer(t *testing.T) {
	tmp := initSite(t)

	// A server that answers 200 for everything must fail the probes.
	ts := httptest.NewServer(http200())
	defer ts.Close()

	out, err := run(t, tmp, "check", "--url", ts.URL, "--format", "json")
	if err == nil {
		t.Fatalf("expected failure, got:\n%s", out)
	}

	var decoded struct {
		Report domain.CheckReport `json:"report"`
	}
	if jerr := json.Unmarshal([]byte(out), &decoded); jerr != nil {
		t.Fatalf("invalid json: %v\n%s", jerr, out)
	}
	if decoded.Report.Failures() == 0 {
		t.Fatalf("expected failures in report")
	}
}

func TestServe_LogsToFileAndStopsOnCancel(t *testing.T) {
	tmp := initSite(t)
	logPath := filepath.Join(tmp, "logs", "appserve.log")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chdir(t, tmp)
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0", "--log-file", logPath})
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("serve: %v", err)
	}

	b, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var loaded map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid log line %q: %v", line, err)
		}
		if rec["msg"] == "config.loaded" {
			loaded = rec
		}
	}
	if loaded == nil {
		t.Fatalf("expected config.loaded record, got:\n%s", b)
	}
	if loaded["log_file"] != logPath {
		t.Fatalf("expected log_file %q, got %v", logPath, loaded["log_file"])
	}
	if since, _ := loaded["log_since"].(string); since == "" {
		t.Fatalf("expected log_since timestamp, got %v", loaded["log_since"])
	}
	if !strings.Contains(string(b), `"msg":"server.stop"`) {
		t.Fatalf("expected server.stop record, got:\n%s", b)
	}
}

func TestCheck_UnknownFormatRejectedBeforeAnyRequest(t *testing.T) {
	tmp := initSite(t)

	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	_, err := run(t, tmp, "check", "--url", ts.URL, "--format", "xml")
	if err == nil || !strings.Contains(err.Error(), "unsupported format") {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
	if n := hits.Load(); n != 0 {
		t.Fatalf("expected no requests before format validation, got %d", n)
	}
}
