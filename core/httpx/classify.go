package httpx

import (
	"context"
	"crypto/tls"
	"errors"
	"net"
)

// StatusCoder is implemented by errors that carry an upstream HTTP status.
type StatusCoder interface {
	HTTPStatusCode() int
}

// Classify returns a short failure kind for logs: timeout, cancelled, dns,
// dial, tls, http_4xx, http_5xx or unknown. A nil error yields "".
func Classify(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}

	var sc StatusCoder
	if errors.As(err, &sc) {
		if kind := StatusKind(sc.HTTPStatusCode()); kind != "" {
			return kind
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "dial"
	}
	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return "tls"
	}
	return "unknown"
}

// StatusKind maps an HTTP status to http_4xx or http_5xx; other codes
// yield "".
func StatusKind(code int) string {
	switch {
	case code >= 500:
		return "http_5xx"
	case code >= 400:
		return "http_4xx"
	}
	return ""
}
