package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sciadvances/catalog-api/internal/user"
)

var (
	// ErrMalformedToken means the raw token is structurally invalid.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidToken covers bad signature, issuer/audience mismatch and a
	// current time outside the [not-before, expiry] window.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidCredentials is surfaced as 404, never 401, so a login
	// attempt cannot confirm a username exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserInactive rejects logins of deactivated accounts.
	ErrUserInactive = errors.New("user is inactive")
)

// Claims is the token payload: the registered claim set plus the user id and
// the granted scopes.
type Claims struct {
	UID    int64    `json:"uid"`
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// TokenService issues and checks bearer tokens. Stateless: tokens are never
// revoked server-side before natural expiry.
type TokenService interface {
	Issue(u *user.User, requestedScopes []string) (string, error)
	Parse(raw string) (*Claims, error)
	Validate(raw string) (*Claims, error)
	Lifetime() time.Duration
}

// UserRepository is the account lookup the login flow needs. A missing
// username returns (nil, nil).
type UserRepository interface {
	ByUsername(username string) (*user.User, error)
}
