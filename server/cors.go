package server

import "net/http"

// CORS sets Access-Control-Allow-Origin and Access-Control-Allow-Methods on
// every response. An empty origin disables it. Preflight requests are not
// answered here; they continue down the chain like any other request.
func CORS(origin, methods string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if origin == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", methods)
			next.ServeHTTP(w, r)
		})
	}
}
