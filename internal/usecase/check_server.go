package usecase

import (
	"context"
	"net/http"
	"time"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/aalvaropc/appserve/internal/ports"
	ucassert "github.com/aalvaropc/appserve/internal/usecase/assert"
	"github.com/google/uuid"
)

// configMarker is the first line of every appserve.yaml. A probe body
// containing it means the config file next to the site root leaked.
const configMarker = "appserve:"

type CheckServer struct {
	prober ports.Prober
	now    func() time.Time
}

type CheckOption func(*CheckServer)

// WithClock is useful for tests.
func WithClock(now func() time.Time) CheckOption {
	return func(uc *CheckServer) {
		if now != nil {
			uc.now = now
		}
	}
}

func NewCheckServer(p ports.Prober, opts ...CheckOption) *CheckServer {
	uc := &CheckServer{
		prober: p,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// StandardProbes is the probe set run by `appserve check` against a server
// configured with site.
func StandardProbes(site domain.SiteConfig) []domain.ProbeSpec {
	indexURL := site.IndexURL()
	return []domain.ProbeSpec{
		{
			Name: "root.redirect",
			Path: "/",
			Expect: domain.Expectation{
				Status:   http.StatusMovedPermanently,
				Location: indexURL,
			},
		},
		{
			Name: "index.ok",
			Path: indexURL,
			Expect: domain.Expectation{
				Status:            http.StatusOK,
				ContentTypePrefix: "text/html",
			},
		},
		{
			Name:   "index.head",
			Method: http.MethodHead,
			Path:   indexURL,
			Expect: domain.Expectation{Status: http.StatusOK},
		},
		{
			Name:   "asset.missing",
			Path:   site.Prefix + "/" + uuid.NewString() + ".js",
			Expect: domain.Expectation{Status: http.StatusNotFound},
		},
		{
			Name: "traversal.blocked",
			Path: site.Prefix + "/../appserve.yaml",
			Expect: domain.Expectation{
				NotStatus:       http.StatusOK,
				BodyNotContains: configMarker,
			},
		},
		{
			Name: "traversal.encoded",
			Path: site.Prefix + "/%2e%2e/appserve.yaml",
			Expect: domain.Expectation{
				NotStatus:       http.StatusOK,
				BodyNotContains: configMarker,
			},
		},
		{
			Name:   "method.rejected",
			Method: http.MethodPost,
			Path:   indexURL,
			Expect: domain.Expectation{Status: http.StatusMethodNotAllowed},
		},
	}
}

// Execute sends every probe in order and evaluates its expectations.
// Transport failures are recorded per probe; only a cancelled ctx or a
// base URL that cannot form a request stops the run.
func (uc *CheckServer) Execute(ctx context.Context, baseURL string, probes []domain.ProbeSpec) (domain.CheckReport, error) {
	report := domain.CheckReport{
		BaseURL:   baseURL,
		StartedAt: uc.now(),
		Results:   make([]domain.ProbeResult, 0, len(probes)),
	}

	for _, spec := range probes {
		if err := ctx.Err(); err != nil {
			report.EndedAt = uc.now()
			return report, err
		}

		res, err := uc.prober.Probe(ctx, baseURL, spec)
		if err != nil {
			if domain.IsKind(err, domain.KindInvalidConfig) {
				report.EndedAt = uc.now()
				return report, err
			}
			res = domain.ProbeResult{
				Name:   spec.Name,
				Method: spec.Method,
				Checks: []domain.CheckOutcome{},
				Error:  domain.NewProbeError(err),
			}
		}

		res.Checks = ucassert.Evaluate(spec.Expect, res)
		report.Results = append(report.Results, res)
	}

	report.EndedAt = uc.now()
	return report, nil
}
