// Package server is the HTTP entry point: a root redirect plus static files
// mounted under a prefix, with an optional separate metrics listener.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/aalvaropc/appserve/internal/domain"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	cfg     domain.Config
	log     *slog.Logger
	site    *SiteHandler
	handler http.Handler
	tls     *tls.Config
}

// New validates cfg, resolves the site root and builds the handler chain.
func New(cfg domain.Config, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	site, err := NewSiteHandler(cfg.Site.Root,
		WithIndex(cfg.Site.Index),
		WithHideDotfiles(cfg.Site.HideDotfiles),
		WithSiteLogger(log),
	)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(filepath.Join(site.Root(), cfg.Site.Index)); err != nil {
		// The root redirect will 404 until the index is deployed.
		log.Warn("site.index_missing", "root", site.Root(), "index", cfg.Site.Index)
	}

	tlsCfg, err := TLSConfig(cfg.TLS)
	if err != nil {
		return nil, err
	}

	router := NewRouter(cfg.Site, site)
	handler := Chain(router,
		Recover(log),
		RequestID(),
		AccessLog(log),
		Metrics(router),
	)

	return &Server{
		cfg:     cfg,
		log:     log,
		site:    site,
		handler: handler,
		tls:     tlsCfg,
	}, nil
}

// Handler is the full site handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured addresses and serves until ctx is cancelled or
// a listener fails, then shuts everything down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := Listen(s.cfg.Server.Addr, s.tls)
	if err != nil {
		return err
	}

	var metricsLn net.Listener
	if s.cfg.Metrics.Addr != "" {
		metricsLn, err = Listen(s.cfg.Metrics.Addr, nil)
		if err != nil {
			_ = ln.Close()
			return err
		}
	}

	return s.serve(ctx, ln, metricsLn)
}

// Serve is Run on caller-provided listeners. metricsLn may be nil.
func (s *Server) Serve(ctx context.Context, ln, metricsLn net.Listener) error {
	return s.serve(ctx, ln, metricsLn)
}

func (s *Server) serve(ctx context.Context, ln, metricsLn net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	servers := []*http.Server{s.newHTTPServer(s.handler)}
	g.Go(func() error {
		s.log.Info("server.start",
			"addr", ln.Addr().String(),
			"root", s.site.Root(),
			"prefix", s.cfg.Site.Prefix,
			"tls", s.tls != nil,
		)
		return ignoreClosed(servers[0].Serve(ln))
	})

	if metricsLn != nil {
		ms := s.newHTTPServer(MetricsHandler())
		servers = append(servers, ms)
		g.Go(func() error {
			s.log.Info("metrics.start", "addr", metricsLn.Addr().String())
			return ignoreClosed(ms.Serve(metricsLn))
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = domain.DefaultConfig().Server.ShutdownTimeout
		}
		sctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(sctx); err != nil {
				errs = append(errs, err)
				_ = srv.Close()
			}
		}
		s.log.Info("server.stop", "cause", context.Cause(gctx))
		return errors.Join(errs...)
	})

	return g.Wait()
}

func (s *Server) newHTTPServer(h http.Handler) *http.Server {
	return &http.Server{
		Handler:           h,
		ReadHeaderTimeout: s.cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		IdleTimeout:       s.cfg.Server.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}
}

func ignoreClosed(err error) error {
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
