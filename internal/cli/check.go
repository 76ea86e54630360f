package cli

import (
	"fmt"
	"net"
	"path/filepath"
	"strings"
	"time"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/aalvaropc/appserve/internal/infra/httpclient"
	"github.com/aalvaropc/appserve/internal/infra/httpprobe"
	"github.com/aalvaropc/appserve/internal/infra/reportstore"
	"github.com/aalvaropc/appserve/internal/usecase"
	"github.com/docker/go-connections/tlsconfig"
	"github.com/spf13/cobra"
)

const defaultReportDir = ".appserve/checks"

func checkCmd(flags *configFlags) *cobra.Command {
	var (
		baseURL  string
		format   string
		timeout  time.Duration
		caFile   string
		insecure bool
		save     bool
		saveDir  string
	)

	c := &cobra.Command{
		Use:   "check",
		Short: "Probe a running server: redirect, index, 404s and traversal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			s, err := loadSettings(cmd, flags)
			if err != nil {
				return err
			}

			target := strings.TrimSpace(baseURL)
			if target == "" {
				target, err = baseURLFor(s.cfg)
				if err != nil {
					return err
				}
			}

			clientCfg := httpclient.DefaultConfig()
			clientCfg.Timeout = timeout
			if strings.HasPrefix(target, "https://") {
				tlsCfg, err := tlsconfig.Client(tlsconfig.Options{
					CAFile:             caFile,
					InsecureSkipVerify: insecure,
				})
				if err != nil {
					return &domain.OpError{Op: "check.tls", Kind: domain.KindInvalidConfig, Path: caFile, Err: err}
				}
				clientCfg.TLS = tlsCfg
			}

			exec := httpclient.NewExecutor(
				httpclient.WithClient(httpclient.New(clientCfg)),
				httpclient.WithTimeout(timeout),
			)
			uc := usecase.NewCheckServer(httpprobe.New(exec))

			report, err := uc.Execute(cmd.Context(), target, usecase.StandardProbes(s.cfg.Site))
			if err != nil {
				_ = printCheck(cmd.OutOrStdout(), report, "", format)
				return err
			}

			var reportID string
			if save {
				dir := saveDir
				if !filepath.IsAbs(dir) {
					dir = filepath.Join(s.baseDir, dir)
				}
				reportID, err = reportstore.NewJSONStore(dir, reportstore.WithIndex(true)).SaveReport(report)
				if err != nil {
					_ = printCheck(cmd.OutOrStdout(), report, "", format)
					return err
				}
			}

			if err := printCheck(cmd.OutOrStdout(), report, reportID, format); err != nil {
				return err
			}

			if fails := report.Failures(); fails > 0 {
				return fmt.Errorf("check failed (%d failed probe(s))", fails)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&baseURL, "url", "u", "", "Base URL of the server (default: derived from server.addr)")
	c.Flags().StringVar(&format, "format", "pretty", "Output format: pretty|json")
	c.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Per-probe timeout")
	c.Flags().StringVar(&caFile, "ca-file", "", "CA bundle for https targets")
	c.Flags().BoolVar(&insecure, "insecure", false, "Skip TLS certificate verification")
	c.Flags().BoolVar(&save, "save", false, "Save the report as JSON")
	c.Flags().StringVar(&saveDir, "save-dir", defaultReportDir, "Report directory, relative to the config directory")
	return c
}

// baseURLFor derives the probe URL from a tcp listen address. Wildcard hosts
// are probed on loopback.
func baseURLFor(cfg domain.Config) (string, error) {
	addr := cfg.Server.Addr
	if proto, rest, ok := strings.Cut(addr, "://"); ok {
		if proto != "tcp" {
			return "", fmt.Errorf("cannot derive a URL from %q; pass --url", addr)
		}
		addr = rest
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("cannot derive a URL from %q; pass --url: %w", cfg.Server.Addr, err)
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}

	scheme := "http"
	if cfg.TLS.Enabled() {
		scheme = "https"
	}
	return scheme + "://" + net.JoinHostPort(host, port), nil
}
