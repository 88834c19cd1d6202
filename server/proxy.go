package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"time"

	"github.com/jonwraymond/flowgate/breaker"
	"github.com/jonwraymond/flowgate/observe"
)

// NewUpstreamProxy returns a reverse proxy to the editor at rawURL.
// Request headers, Authorization included, are forwarded unchanged.
// transport may be nil; a breaker.Transport makes an open breaker answer 503.
func NewUpstreamProxy(rawURL string, logger observe.Logger, transport http.RoundTripper) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("server: upstream url: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("server: upstream url %q is not absolute", rawURL)
	}
	if logger == nil {
		logger = observe.NopLogger()
	}

	var retryAfter func() time.Duration
	if bt, ok := transport.(*breaker.Transport); ok {
		retryAfter = bt.Breaker.RetryAfter
	}

	return &httputil.ReverseProxy{
		Transport: transport,
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			status := http.StatusBadGateway
			if errors.Is(err, breaker.ErrOpen) {
				status = http.StatusServiceUnavailable
				if retryAfter != nil {
					if d := retryAfter(); d > 0 {
						w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.Seconds()))))
					}
				}
				logger.Warn(r.Context(), "upstream breaker open",
					observe.Field{Key: "http.method", Value: r.Method},
					observe.Field{Key: "url.path", Value: r.URL.Path},
				)
			} else {
				logger.Error(r.Context(), "upstream request failed",
					observe.Field{Key: "http.method", Value: r.Method},
					observe.Field{Key: "url.path", Value: r.URL.Path},
					observe.Field{Key: "error", Value: err},
				)
			}

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error":   http.StatusText(status),
				"message": "upstream editor unavailable",
			})
		},
	}, nil
}
