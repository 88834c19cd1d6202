package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/flowgate/breaker"
	"github.com/jonwraymond/flowgate/config"
	"github.com/jonwraymond/flowgate/credential"
	"github.com/jonwraymond/flowgate/gate"
	"github.com/jonwraymond/flowgate/health"
	"github.com/jonwraymond/flowgate/observe"
	"github.com/jonwraymond/flowgate/secret"
)

// App is a fully assembled gate: credentials loaded, observer running,
// handler ready to serve.
type App struct {
	Config      *config.Config
	Observer    observe.Observer
	Credentials *credential.Set
	Gate        *gate.Gate
	Handler     http.Handler

	resolver *secret.Resolver
}

// NewApp assembles the gate from cfg. Secret loading never fails here;
// errors come only from invalid configuration.
func NewApp(ctx context.Context, cfg *config.Config, registry *secret.Registry) (*App, error) {
	obsCfg := cfg.Observe
	var promRegistry *prometheus.Registry
	if obsCfg.Metrics.Enabled && obsCfg.Metrics.Exporter == "prometheus" {
		promRegistry = prometheus.NewRegistry()
		obsCfg.Metrics.Registerer = promRegistry
	}

	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("server: observer: %w", err)
	}
	logger := obs.Logger()

	set, resolver, err := LoadCredentials(ctx, cfg, registry, logger)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, fmt.Errorf("server: gate instrumentation: %w", err)
	}
	g := gate.New(set, gate.WithObserver(mw), gate.WithLogger(logger))

	agg := health.NewAggregator(0)
	agg.Register(credential.NewChecker(set))

	var transport http.RoundTripper
	if bcfg := cfg.Upstream.Breaker; bcfg.Enabled {
		bcfg.OnStateChange = func(from, to breaker.State) {
			logger.Warn(context.Background(), "upstream breaker state changed",
				observe.Field{Key: "from", Value: from.String()},
				observe.Field{Key: "to", Value: to.String()},
			)
		}
		b := breaker.New(bcfg)
		transport = &breaker.Transport{Breaker: b}
		agg.Register(breaker.NewChecker(b))
	}

	proxy, err := NewUpstreamProxy(cfg.Upstream.URL, logger, transport)
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	var metrics http.Handler
	if promRegistry != nil {
		metrics = promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})
	}

	router, err := NewRouter(RouterConfig{
		Gate:        g,
		Upstream:    proxy,
		AdminPrefix: cfg.Upstream.AdminPrefix,
		Metrics:     metrics,
		Health:      agg,
		CORSOrigin:  cfg.CORS.Origin,
		CORSMethods: cfg.CORS.Methods,
	})
	if err != nil {
		_ = obs.Shutdown(ctx)
		return nil, err
	}

	return &App{
		Config:      cfg,
		Observer:    obs,
		Credentials: set,
		Gate:        g,
		Handler:     router,
		resolver:    resolver,
	}, nil
}

// LoadCredentials builds the configured secret provider and loads the
// credential set once. When the configured provider is not "file", a file
// provider at the default root is also registered so file refs keep working.
func LoadCredentials(ctx context.Context, cfg *config.Config, registry *secret.Registry, logger observe.Logger) (*credential.Set, *secret.Resolver, error) {
	if registry == nil {
		registry = secret.DefaultRegistry
	}

	provider, err := registry.Create(cfg.Secrets.Provider, cfg.Secrets.Options)
	if err != nil {
		return nil, nil, fmt.Errorf("server: secret provider: %w", err)
	}
	resolver := secret.NewResolver(provider)
	if provider.Name() != "file" {
		resolver.Register(secret.NewFileProvider(""))
	}

	loader := secret.NewLoader(resolver, logger)
	set := credential.Load(ctx, loader, cfg.Secrets.Sources, logger,
		credential.WithSessionExpiry(cfg.Session.ExpirySeconds))
	return set, resolver, nil
}

// Run serves the app on its configured address until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	srv := New(a.Config.Address(), a.Handler, a.Observer.Logger(), a.Config.Server.ShutdownTimeout)
	return srv.Run(ctx)
}

// Close flushes telemetry and releases secret providers.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.Observer.Shutdown(ctx), a.resolver.Close())
}
