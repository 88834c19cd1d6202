package auth

// AuthMethod indicates how authentication was performed.
type AuthMethod string

const (
	AuthMethodNone   AuthMethod = "none"
	AuthMethodBearer AuthMethod = "bearer"
)

// Identity represents an authenticated caller.
type Identity struct {
	// Principal names the caller: the token's name, or "api-token" when unnamed.
	Principal string

	// Scopes are the scopes carried by the matched token.
	Scopes []string

	// Method indicates how authentication was performed.
	Method AuthMethod
}

// HasScope reports whether the identity carries scope or the wildcard "*".
func (id *Identity) HasScope(scope string) bool {
	if id == nil {
		return false
	}
	for _, s := range id.Scopes {
		if s == scope || s == "*" {
			return true
		}
	}
	return false
}
