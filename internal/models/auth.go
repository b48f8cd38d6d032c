package models

import "github.com/golang-jwt/jwt/v5"

// Role is the access level carried by an API token.
type Role string

const (
	// RoleRegistrar may change the loaded term.
	RoleRegistrar Role = "REGISTRAR"
	// RoleViewer may only read.
	RoleViewer Role = "VIEWER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleRegistrar || r == RoleViewer
}

// JWTClaims is the access token payload.
type JWTClaims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// IssuedToken describes a freshly signed token.
type IssuedToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}
