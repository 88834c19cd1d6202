package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/jonwraymond/flowgate/gate"
	"github.com/jonwraymond/flowgate/health"
)

// RouterConfig holds the collaborators the router is assembled from.
type RouterConfig struct {
	// Gate decides every non-health, non-admin request. Required.
	Gate *gate.Gate

	// Upstream receives admitted requests and the admin prefix. Required.
	Upstream http.Handler

	// AdminPrefix is forwarded to Upstream without the gate. Empty gates everything.
	AdminPrefix string

	// Metrics, when set, serves gated /metrics locally instead of proxying it.
	Metrics http.Handler

	// Health backs the gated /readyz and /health. /healthz is always ungated.
	Health *health.Aggregator

	CORSOrigin  string
	CORSMethods string
}

// NewRouter builds the request router.
func NewRouter(cfg RouterConfig) (*mux.Router, error) {
	if cfg.Gate == nil {
		return nil, errors.New("server: gate is required")
	}
	if cfg.Upstream == nil {
		return nil, errors.New("server: upstream handler is required")
	}
	if cfg.Health == nil {
		cfg.Health = health.NewAggregator(0)
	}

	r := mux.NewRouter()
	// Paths are forwarded verbatim; the editor owns their meaning.
	r.SkipClean(true)

	health.RegisterLiveness(r)

	if prefix := strings.TrimSuffix(cfg.AdminPrefix, "/"); prefix != "" {
		r.Path(prefix).Handler(cfg.Upstream)
		r.PathPrefix(prefix + "/").Handler(cfg.Upstream)
	}

	gated := r.NewRoute().Subrouter()
	gated.Use(CORS(cfg.CORSOrigin, cfg.CORSMethods), cfg.Gate.Middleware)
	health.RegisterChecks(gated, cfg.Health)
	if cfg.Metrics != nil {
		gated.Path(gate.MetricsPath).Handler(cfg.Metrics)
	}
	gated.PathPrefix("/").Handler(cfg.Upstream)

	return r, nil
}
