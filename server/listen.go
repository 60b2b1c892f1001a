package server

import (
	"context"
	"fmt"
)

// ListenAndServe listens on the TCP address addr with the given accept
// backlog and serves until ctx is done. A non-positive backlog uses the
// system maximum.
func (s *Server) ListenAndServe(ctx context.Context, addr string, backlog int) error {
	ln, err := listen(ctx, addr, backlog)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}

	return s.Serve(ctx, ln)
}
