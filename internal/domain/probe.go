package domain

import (
	"context"
	"errors"
	"net"
	"net/url"
	"os"
	"syscall"
	"time"
)

// ProbeErrorKind is a high-level classification of transport errors seen while
// probing a running server.
type ProbeErrorKind string

const (
	ProbeErrorUnknown ProbeErrorKind = "unknown"
	ProbeErrorTimeout ProbeErrorKind = "timeout"
	ProbeErrorDNS     ProbeErrorKind = "dns"
	ProbeErrorConn    ProbeErrorKind = "connection"
)

// ProbeError represents a structured error produced by a prober.
type ProbeError struct {
	Kind    ProbeErrorKind
	Message string
}

// NewProbeError classifies err. It returns nil for a nil error.
func NewProbeError(err error) *ProbeError {
	if err == nil {
		return nil
	}
	return &ProbeError{Kind: ClassifyProbeError(err), Message: err.Error()}
}

func ClassifyProbeError(err error) ProbeErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ProbeErrorTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ProbeErrorDNS
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return ProbeErrorTimeout
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return ProbeErrorConn
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return ProbeErrorTimeout
		}
		return ProbeErrorConn
	}

	return ProbeErrorUnknown
}

// Expectation describes what a probe response must look like. Zero values are
// not checked.
type Expectation struct {
	Status            int
	NotStatus         int
	Location          string
	ContentTypePrefix string
	BodyNotContains   string
	MaxLatencyMS      *int
}

// ProbeSpec is a single request sent by `appserve check`.
type ProbeSpec struct {
	Name string
	// Method defaults to GET.
	Method string
	// Path is sent verbatim (already escaped) and joined to the base URL.
	Path   string
	Expect Expectation
}

// CheckOutcome is the result of evaluating one expectation.
type CheckOutcome struct {
	Name    string
	Passed  bool
	Message string
}

// ResponseSnapshot stores a bounded view of the response.
// Keep it generic so the domain does not depend on net/http types.
type ResponseSnapshot struct {
	Headers   map[string][]string
	Body      []byte
	Truncated bool
}

// ProbeResult is the outcome of one probe.
type ProbeResult struct {
	Name   string
	Method string
	URL    string

	StatusCode int
	LatencyMS  int64

	Checks []CheckOutcome

	Response ResponseSnapshot `json:"-"`
	Error    *ProbeError
}

// Failed reports whether the probe errored or any expectation failed.
func (r ProbeResult) Failed() bool {
	if r.Error != nil {
		return true
	}
	for _, c := range r.Checks {
		if !c.Passed {
			return true
		}
	}
	return false
}

// CheckReport is the outcome of a full `appserve check`.
type CheckReport struct {
	BaseURL   string
	StartedAt time.Time
	EndedAt   time.Time
	Results   []ProbeResult
}

func (r CheckReport) Failures() int {
	n := 0
	for _, p := range r.Results {
		if p.Failed() {
			n++
		}
	}
	return n
}
