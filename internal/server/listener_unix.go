//go:build !windows

package server

import (
	"net"

	"github.com/docker/go-connections/sockets"
)

func listenUnix(path string) (net.Listener, error) {
	return sockets.NewUnixSocketWithOpts(path, sockets.WithChmod(0o660))
}
