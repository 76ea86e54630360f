package server

import (
	"net/http"

	metrics "github.com/docker/go-metrics"
)

var (
	requestsTotal   metrics.LabeledCounter
	requestDuration metrics.LabeledTimer
)

func init() {
	ns := metrics.NewNamespace("appserve", "http", nil)
	requestsTotal = ns.NewLabeledCounter("requests", "The number of HTTP requests served, by status code and method", "code", "method")
	requestDuration = ns.NewLabeledTimer("request_duration", "The number of seconds it takes to serve a request, by route", "route")
	metrics.Register(ns)
}

// MetricsHandler exposes the prometheus registry. It is mounted on the
// metrics listener only, never on the site listener.
func MetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}
