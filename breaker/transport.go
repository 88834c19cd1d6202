package breaker

import (
	"context"
	"errors"
	"net/http"
)

// Transport is an http.RoundTripper that routes requests through a Breaker.
// Transport errors and 502, 503, and 504 responses count as failures;
// requests canceled by the caller count as neither.
type Transport struct {
	// Base performs the request. Default: http.DefaultTransport
	Base http.RoundTripper

	Breaker *Breaker
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Breaker.Allow(); err != nil {
		return nil, err
	}

	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)
	if err != nil && errors.Is(err, context.Canceled) && req.Context().Err() != nil {
		// Abandoned by the client; release a probe slot without judging the upstream.
		t.Breaker.abandon()
		return resp, err
	}
	t.Breaker.Record(IsFailure(resp, err))
	return resp, err
}

// IsFailure reports whether an upstream round trip counts against the breaker.
func IsFailure(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

var _ http.RoundTripper = (*Transport)(nil)
