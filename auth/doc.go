// Package auth provides the bearer-token authentication and scope
// authorization primitives used by the gate.
//
// Tokens are opaque strings matched against an immutable allow-list
// (TokenList) in constant time. The package is transport-agnostic:
// RequestFromHTTP adapts an *http.Request into an AuthRequest.
package auth
