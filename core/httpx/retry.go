package httpx

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
)

// ShouldRetry reports whether a network error is worth retrying.
// Only transient dial, reset and timeout failures produced by net/http qualify;
// context cancellation never does.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	// *url.Error and *net.OpError both implement net.Error and report nested timeouts.
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
