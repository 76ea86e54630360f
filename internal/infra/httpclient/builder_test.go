package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aalvaropc/appserve/internal/domain"
)

func TestBuildProbeRequestKeepsEscapedPath(t *testing.T) {
	var gotURI, gotMethod, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURI = r.RequestURI
		gotMethod = r.Method
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	req, err := BuildProbeRequest(context.Background(), server.URL+"/", domain.ProbeSpec{
		Name: "traversal",
		Path: "/app/%2e%2e/appserve.yaml",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed request: %v", err)
	}
	resp.Body.Close()

	if gotURI != "/app/%2e%2e/appserve.yaml" {
		t.Fatalf("expected escaped path to be sent verbatim, got %q", gotURI)
	}
	if gotMethod != http.MethodGet {
		t.Fatalf("expected default method GET, got %s", gotMethod)
	}
	if gotUA != "appserve-check" {
		t.Fatalf("expected user agent, got %q", gotUA)
	}
}

func TestBuildProbeRequestMethodAndRelativePath(t *testing.T) {
	req, err := BuildProbeRequest(context.Background(), "http://127.0.0.1:8000", domain.ProbeSpec{
		Method: "head",
		Path:   "app/index.html",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Method != http.MethodHead {
		t.Fatalf("expected HEAD, got %s", req.Method)
	}
	if req.URL.String() != "http://127.0.0.1:8000/app/index.html" {
		t.Fatalf("unexpected url %s", req.URL.String())
	}
}

func TestBuildProbeRequestRejectsBadBase(t *testing.T) {
	for _, base := range []string{"", "   ", "127.0.0.1:8000", "/relative"} {
		_, err := BuildProbeRequest(context.Background(), base, domain.ProbeSpec{Path: "/"})
		if !domain.IsKind(err, domain.KindInvalidConfig) {
			t.Fatalf("base %q: expected invalid config, got %v", base, err)
		}
	}
}
