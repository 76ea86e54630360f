package server

import (
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Middleware wraps an http.Handler. Chain applies them outermost first.
type Middleware func(http.Handler) http.Handler

func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

const requestIDHeader = "X-Request-ID"

// RequestID propagates a client supplied UUID request id, or generates one.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
				r.Header.Set(requestIDHeader, id)
			}
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// Recover turns a handler panic into a 500 and logs it. When the response
// has already started only the log record is written. http.ErrAbortHandler
// is re-raised so net/http can drop the connection quietly.
func Recover(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := newResponseRecorder(w)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("http.panic",
					"method", r.Method,
					"path", r.URL.Path,
					"request_id", r.Header.Get(requestIDHeader),
					"panic", rec,
					"committed", rw.Written(),
					"stack", string(debug.Stack()),
				)
				if rw.Written() {
					return
				}
				http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// AccessLog logs one http.request record per request.
func AccessLog(log *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseRecorder(w)
			next.ServeHTTP(rw, r)

			level := slog.LevelInfo
			if rw.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.Log(r.Context(), level, "http.request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.Status(),
				"bytes", rw.Bytes(),
				"duration_ms", time.Since(start).Milliseconds(),
				"remote", r.RemoteAddr,
				"request_id", r.Header.Get(requestIDHeader),
			)
		})
	}
}

// Metrics records request counts by status/method and durations by the
// matched route template of router.
func Metrics(router *mux.Router) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			route := routeName(router, r)
			rw := newResponseRecorder(w)
			next.ServeHTTP(rw, r)

			requestsTotal.WithValues(strconv.Itoa(rw.Status()), r.Method).Inc()
			requestDuration.WithValues(route).UpdateSince(start)
		})
	}
}

func routeName(router *mux.Router, r *http.Request) string {
	var match mux.RouteMatch
	if router == nil || !router.Match(r, &match) || match.Route == nil {
		return "unmatched"
	}
	if name := match.Route.GetName(); name != "" {
		return name
	}
	if tpl, err := match.Route.GetPathTemplate(); err == nil {
		return tpl
	}
	return "unmatched"
}

// responseRecorder captures the status code and body size.
type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	if rr, ok := w.(*responseRecorder); ok {
		return rr
	}
	return &responseRecorder{ResponseWriter: w}
}

func (r *responseRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(p)
	r.bytes += int64(n)
	return n, err
}

// ReadFrom keeps the sendfile path of the underlying writer for file bodies.
func (r *responseRecorder) ReadFrom(src io.Reader) (int64, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	var n int64
	var err error
	if rf, ok := r.ResponseWriter.(io.ReaderFrom); ok {
		n, err = rf.ReadFrom(src)
	} else {
		n, err = io.Copy(struct{ io.Writer }{r.ResponseWriter}, src)
	}
	r.bytes += n
	return n, err
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *responseRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Written reports whether a status line has been sent.
func (r *responseRecorder) Written() bool {
	return r.status != 0
}

func (r *responseRecorder) Bytes() int64 {
	return r.bytes
}
