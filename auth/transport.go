package auth

import "net/http"

// RequestFromHTTP builds an AuthRequest from r. The header map is shared,
// not copied; callers must not mutate it while authenticating.
func RequestFromHTTP(r *http.Request) *AuthRequest {
	return &AuthRequest{
		Headers:  r.Header,
		Resource: r.URL.Path,
	}
}

// WithIdentityHandler attaches the identity to each request's context before
// calling next. It is used after a successful gate decision.
func WithIdentityHandler(id *Identity, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}
