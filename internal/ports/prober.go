package ports

import (
	"context"

	"github.com/aalvaropc/appserve/internal/domain"
)

// Prober sends a single probe request to a running server. Transport failures
// are reported in ProbeResult.Error; the returned error is for requests that
// could not be built at all.
type Prober interface {
	Probe(ctx context.Context, baseURL string, spec domain.ProbeSpec) (domain.ProbeResult, error)
}
