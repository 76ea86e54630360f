package httpprobe

import (
	"context"
	"net/http"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/aalvaropc/appserve/internal/infra/httpclient"
	"github.com/aalvaropc/appserve/internal/ports"
)

type Prober struct {
	exec *httpclient.Executor
}

func New(exec *httpclient.Executor) *Prober {
	if exec == nil {
		exec = httpclient.NewExecutor()
	}
	return &Prober{exec: exec}
}

var _ ports.Prober = (*Prober)(nil)

// Probe sends spec to baseURL. Expectations are not evaluated here.
func (p *Prober) Probe(ctx context.Context, baseURL string, spec domain.ProbeSpec) (domain.ProbeResult, error) {
	req, err := httpclient.BuildProbeRequest(ctx, baseURL, spec)
	if err != nil {
		return domain.ProbeResult{}, err
	}

	result := domain.ProbeResult{
		Name:   spec.Name,
		Method: req.Method,
		URL:    req.URL.String(),
		Checks: []domain.CheckOutcome{},
		Response: domain.ResponseSnapshot{
			Headers: map[string][]string{},
		},
	}

	resp, err := p.exec.Do(ctx, req)
	result.LatencyMS = resp.Duration.Milliseconds()
	result.StatusCode = resp.Status
	if err != nil {
		result.Error = domain.NewProbeError(err)
		return result, nil
	}

	result.Response.Headers = cloneHeaders(resp.Headers)
	result.Response.Body = resp.BodyBytes
	result.Response.Truncated = resp.Truncated
	return result, nil
}

func cloneHeaders(h http.Header) map[string][]string {
	out := make(map[string][]string, len(h))
	for k, v := range h {
		cp := make([]string, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}
