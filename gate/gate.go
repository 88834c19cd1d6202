package gate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/jonwraymond/flowgate/auth"
	"github.com/jonwraymond/flowgate/credential"
	"github.com/jonwraymond/flowgate/observe"
)

// ErrInternal is the denial reason when the decision itself failed.
var ErrInternal = errors.New("gate: internal error")

// Gate admits or denies HTTP requests against a credential set.
type Gate struct {
	policy        Policy
	authenticator auth.Authenticator
	authorizer    auth.Authorizer
	observer      *observe.Middleware
	logger        observe.Logger
}

// Option configures a Gate.
type Option func(*Gate)

// WithPolicy replaces DefaultPolicy.
func WithPolicy(p Policy) Option {
	return func(g *Gate) { g.policy = p }
}

// WithObserver records every decision as a span, metrics, and a log line.
func WithObserver(mw *observe.Middleware) Option {
	return func(g *Gate) {
		if mw != nil {
			g.observer = mw
		}
	}
}

// WithLogger sets the logger used for internal failures.
func WithLogger(logger observe.Logger) Option {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithAuthenticator replaces the bearer authenticator built from the set.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(g *Gate) {
		if a != nil {
			g.authenticator = a
		}
	}
}

// New creates a Gate over set. The set is read, never modified.
func New(set *credential.Set, opts ...Option) *Gate {
	g := &Gate{
		policy:   DefaultPolicy(),
		observer: observe.NoopMiddleware(),
		logger:   observe.NopLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.authenticator == nil {
		g.authenticator = auth.NewBearerAuthenticator(auth.BearerConfig{}, set.TokenStore())
	}
	g.authorizer = auth.NewScopeAuthorizer(g.policy.RequiredScopes())
	return g
}

// Policy returns the gate's policy.
func (g *Gate) Policy() Policy {
	return g.policy
}

// Decide checks r and returns the decision. It never panics; a failure
// inside the check is a denial with status 500.
func (g *Gate) Decide(ctx context.Context, r *http.Request) (d Decision) {
	class := g.policy.Classify(r.URL.Path)
	route := observe.RouteMeta{
		Class:  string(class),
		Method: r.Method,
		Path:   r.URL.Path,
	}

	defer func() {
		if rec := recover(); rec != nil {
			g.logger.WithRoute(route).Error(ctx, "panic in gate decision",
				observe.Field{Key: "panic", Value: fmt.Sprint(rec)},
				observe.Field{Key: "stack", Value: string(debug.Stack())},
			)
			d = Deny(http.StatusInternalServerError, "internal server error")
			d.Class = class
			d.Reason = ErrInternal
		}
	}()

	var identity *auth.Identity
	check := g.observer.Wrap(func(ctx context.Context, route observe.RouteMeta) error {
		id, err := g.check(ctx, r, class)
		identity = id
		return err
	})

	if err := check(ctx, route); err != nil {
		d = Deny(http.StatusUnauthorized, g.policy.Rule(class).Message)
		d.Class = class
		d.Reason = err
		return d
	}

	d = Admit()
	d.Class = class
	d.Identity = identity
	return d
}

func (g *Gate) check(ctx context.Context, r *http.Request, class EndpointClass) (*auth.Identity, error) {
	result, err := g.authenticator.Authenticate(ctx, auth.RequestFromHTTP(r))
	if err != nil {
		return nil, err
	}
	if !result.Authenticated {
		if result.Error == nil {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, result.Error
	}

	if err := g.authorizer.Authorize(ctx, &auth.AuthzRequest{
		Subject:  result.Identity,
		Resource: string(class),
		Action:   r.Method,
	}); err != nil {
		return nil, err
	}
	return result.Identity, nil
}

// Middleware runs Decide before next. On denial the response is written and
// next is not called; on admission next runs with the caller's identity in
// the request context.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Decide(r.Context(), r)
		if !d.Admit {
			WriteDenial(w, d)
			return
		}
		auth.WithIdentityHandler(d.Identity, next).ServeHTTP(w, r)
	})
}
