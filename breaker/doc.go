// Package breaker stops forwarding to the upstream editor after repeated
// failures.
//
// A Breaker counts consecutive upstream failures. Once MaxFailures is
// reached it opens and every request fails fast with ErrOpen until
// ResetTimeout has passed; then a single probe is let through. A successful
// probe closes the breaker, a failed one reopens it.
//
// Transport applies a Breaker to an http.RoundTripper, and Checker reports
// its state through the health package.
package breaker
