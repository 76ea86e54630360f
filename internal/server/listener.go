package server

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/coreos/go-systemd/v22/activation"
	"github.com/docker/go-connections/sockets"
	"github.com/docker/go-connections/tlsconfig"
)

// TLSConfig builds the server TLS config. It returns nil when TLS is disabled.
// A CA file turns on client certificate verification for clients that present one.
func TLSConfig(cfg domain.TLSConfig) (*tls.Config, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	opts := tlsconfig.Options{
		CertFile: cfg.CertFile,
		KeyFile:  cfg.KeyFile,
	}
	if cfg.CAFile != "" {
		opts.CAFile = cfg.CAFile
		opts.ClientAuth = tls.VerifyClientCertIfGiven
	}

	c, err := tlsconfig.Server(opts)
	if err != nil {
		return nil, &domain.OpError{Op: "server.tls", Kind: domain.KindInvalidConfig, Path: cfg.CertFile, Err: err}
	}
	return c, nil
}

// Listen opens addr, which is one of:
//
//	host:port or tcp://host:port
//	unix:///path/to.sock
//	fd:// or fd://<n>    systemd socket activation
//
// tlsConfig, when non-nil, wraps the listener.
func Listen(addr string, tlsConfig *tls.Config) (net.Listener, error) {
	proto, target := splitAddr(addr)

	var (
		l   net.Listener
		err error
	)
	switch proto {
	case "tcp":
		// sockets.NewTCPSocket applies tlsConfig itself.
		l, err = sockets.NewTCPSocket(target, tlsConfig)
		if err != nil {
			return nil, listenErr(addr, err)
		}
		return l, nil
	case "unix":
		l, err = listenUnix(target)
	case "fd":
		l, err = listenFD(target)
	default:
		err = fmt.Errorf("unsupported protocol %q", proto)
	}
	if err != nil {
		return nil, listenErr(addr, err)
	}

	if tlsConfig != nil {
		l = tls.NewListener(l, tlsConfig)
	}
	return l, nil
}

func splitAddr(addr string) (proto, target string) {
	if i := strings.Index(addr, "://"); i >= 0 {
		return addr[:i], addr[i+3:]
	}
	return "tcp", addr
}

func listenFD(target string) (net.Listener, error) {
	ls, err := activation.Listeners()
	if err != nil {
		return nil, err
	}

	var avail []net.Listener
	for _, l := range ls {
		if l != nil {
			avail = append(avail, l)
		}
	}
	if len(avail) == 0 {
		return nil, errors.New("no sockets passed by systemd")
	}

	if target == "" || target == "*" {
		for _, l := range avail[1:] {
			_ = l.Close()
		}
		return avail[0], nil
	}

	var n int
	if _, err := fmt.Sscanf(target, "%d", &n); err != nil {
		return nil, fmt.Errorf("invalid fd %q", target)
	}
	// Activated descriptors start at 3.
	idx := n - 3
	if idx < 0 || idx >= len(ls) || ls[idx] == nil {
		return nil, fmt.Errorf("fd %d is not a passed listener", n)
	}
	for i, l := range ls {
		if i != idx && l != nil {
			_ = l.Close()
		}
	}
	return ls[idx], nil
}

func listenErr(addr string, err error) error {
	return &domain.OpError{Op: "server.listen", Kind: domain.KindExecution, Path: addr, Err: err}
}
