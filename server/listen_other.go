//go:build !linux

package server

import (
	"context"
	"net"
)

// listen falls back to the runtime listener, which ignores backlog.
func listen(ctx context.Context, addr string, _ int) (net.Listener, error) {
	var lc net.ListenConfig
	return lc.Listen(ctx, "tcp", addr)
}
