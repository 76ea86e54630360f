package assert

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/aalvaropc/appserve/internal/domain"
)

func Status(expected int, got int) domain.CheckOutcome {
	if got == expected {
		return domain.CheckOutcome{
			Name:    "status",
			Passed:  true,
			Message: fmt.Sprintf("status %d", got),
		}
	}

	return domain.CheckOutcome{
		Name:    "status",
		Passed:  false,
		Message: fmt.Sprintf("expected status %d, got %d", expected, got),
	}
}

// NotStatus passes for any status other than forbidden.
func NotStatus(forbidden int, got int) domain.CheckOutcome {
	if got != forbidden {
		return domain.CheckOutcome{
			Name:    "status.not",
			Passed:  true,
			Message: fmt.Sprintf("status %d != %d", got, forbidden),
		}
	}

	return domain.CheckOutcome{
		Name:    "status.not",
		Passed:  false,
		Message: fmt.Sprintf("expected status other than %d", forbidden),
	}
}

func MaxLatency(maxMs int, latencyMs int64) domain.CheckOutcome {
	if latencyMs <= int64(maxMs) {
		return domain.CheckOutcome{
			Name:    "max_ms",
			Passed:  true,
			Message: fmt.Sprintf("latency %dms <= %dms", latencyMs, maxMs),
		}
	}

	return domain.CheckOutcome{
		Name:    "max_ms",
		Passed:  false,
		Message: fmt.Sprintf("expected latency <= %dms, got %dms", maxMs, latencyMs),
	}
}

func Location(expected string, headers map[string][]string) domain.CheckOutcome {
	got := header(headers, "Location")
	if got == expected {
		return domain.CheckOutcome{
			Name:    "location",
			Passed:  true,
			Message: fmt.Sprintf("location %s", got),
		}
	}

	return domain.CheckOutcome{
		Name:    "location",
		Passed:  false,
		Message: fmt.Sprintf("expected location %q, got %q", expected, got),
	}
}

func ContentTypePrefix(prefix string, headers map[string][]string) domain.CheckOutcome {
	got := header(headers, "Content-Type")
	if strings.HasPrefix(strings.ToLower(got), strings.ToLower(prefix)) {
		return domain.CheckOutcome{
			Name:    "content_type",
			Passed:  true,
			Message: fmt.Sprintf("content-type %s", got),
		}
	}

	return domain.CheckOutcome{
		Name:    "content_type",
		Passed:  false,
		Message: fmt.Sprintf("expected content-type starting with %q, got %q", prefix, got),
	}
}

// BodyNotContains fails when needle appears in the captured body. The message
// never echoes the body.
func BodyNotContains(needle string, body []byte) domain.CheckOutcome {
	if !bytes.Contains(body, []byte(needle)) {
		return domain.CheckOutcome{
			Name:    "body.not_contains",
			Passed:  true,
			Message: fmt.Sprintf("body does not contain %q", needle),
		}
	}

	return domain.CheckOutcome{
		Name:    "body.not_contains",
		Passed:  false,
		Message: fmt.Sprintf("body contains %q", needle),
	}
}

// Evaluate applies every non-zero expectation to a probe result.
// Probes that failed at the transport level get no checks.
func Evaluate(exp domain.Expectation, res domain.ProbeResult) []domain.CheckOutcome {
	out := []domain.CheckOutcome{}
	if res.Error != nil {
		return out
	}

	if exp.Status != 0 {
		out = append(out, Status(exp.Status, res.StatusCode))
	}
	if exp.NotStatus != 0 {
		out = append(out, NotStatus(exp.NotStatus, res.StatusCode))
	}
	if exp.Location != "" {
		out = append(out, Location(exp.Location, res.Response.Headers))
	}
	if exp.ContentTypePrefix != "" {
		out = append(out, ContentTypePrefix(exp.ContentTypePrefix, res.Response.Headers))
	}
	if exp.BodyNotContains != "" {
		out = append(out, BodyNotContains(exp.BodyNotContains, res.Response.Body))
	}
	if exp.MaxLatencyMS != nil {
		out = append(out, MaxLatency(*exp.MaxLatencyMS, res.LatencyMS))
	}

	return out
}

func header(headers map[string][]string, name string) string {
	return http.Header(headers).Get(name)
}
