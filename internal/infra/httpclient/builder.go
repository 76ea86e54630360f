package httpclient

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/aalvaropc/appserve/internal/domain"
)

// BuildProbeRequest builds the HTTP request for a probe. spec.Path is appended
// to baseURL as-is so escaped segments like %2e%2e reach the server untouched.
func BuildProbeRequest(ctx context.Context, baseURL string, spec domain.ProbeSpec) (*http.Request, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Err:  domain.ErrInvalidConfig,
		}
	}

	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		if err == nil {
			err = domain.ErrInvalidConfig
		}
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: baseURL,
			Err:  err,
		}
	}

	p := spec.Path
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	method := strings.ToUpper(strings.TrimSpace(spec.Method))
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, base+p, http.NoBody)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "httpclient.build",
			Kind: domain.KindInvalidConfig,
			Path: base + p,
			Err:  err,
		}
	}

	req.Header.Set("User-Agent", "appserve-check")
	return req, nil
}
