package credential

import (
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// AdminAuthType is the descriptor type understood by the editor.
const AdminAuthType = "credentials"

// AdminAuth is the credential-check descriptor handed to the editor service.
// The gate never evaluates it; the editor compares passwords against it.
type AdminAuth struct {
	Type              string      `json:"type"`
	Users             []AdminUser `json:"users"`
	SessionExpiryTime int         `json:"sessionExpiryTime"`
}

// AdminUser is a single editor account.
type AdminUser struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Permissions string `json:"permissions"`
}

// VerifyPassword reports whether password matches the user's bcrypt hash.
// The comparison runs in constant time with respect to the password.
func (u AdminUser) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// AdminAuth returns the admin descriptor, or false when no password hash
// was loaded. There is no fallback password.
func (s *Set) AdminAuth() (*AdminAuth, bool) {
	hash, ok := s.AdminPasswordHash()
	if !ok {
		return nil, false
	}
	return &AdminAuth{
		Type: AdminAuthType,
		Users: []AdminUser{{
			Username:    s.adminUsername,
			Password:    hash,
			Permissions: "*",
		}},
		SessionExpiryTime: s.sessionExpirySeconds,
	}, true
}

// AdminAuthJSON encodes the admin descriptor, or "null" when it is absent.
func (s *Set) AdminAuthJSON() ([]byte, error) {
	desc, ok := s.AdminAuth()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(desc)
}

// HashPassword returns a bcrypt hash of password. A cost of 0 selects
// bcrypt.DefaultCost.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("credential: empty password")
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("credential: bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("credential: hash password: %w", err)
	}
	return string(hash), nil
}
