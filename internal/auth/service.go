package auth

import (
	"crypto/rsa"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sciadvances/catalog-api/internal"
	"github.com/sciadvances/catalog-api/internal/user"
)

// JWTTokenService signs RS256 tokens with a fixed issuer and audience.
type JWTTokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
	audience   string
	lifetime   time.Duration
}

func NewJWTTokenService(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, issuer, audience string, lifetime time.Duration) *JWTTokenService {
	return &JWTTokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		issuer:     issuer,
		audience:   audience,
		lifetime:   lifetime,
	}
}

func (s *JWTTokenService) Lifetime() time.Duration {
	return s.lifetime
}

// Issue builds a token for u. The granted scopes are the intersection of the
// requested scopes with the roles the user actually holds; the reader scope
// is always included.
func (s *JWTTokenService) Issue(u *user.User, requestedScopes []string) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UID:    u.ID,
		Scopes: grantScopes(u, requestedScopes),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Parse decodes the claims without checking the signature or the time
// window. Use Validate for anything security-relevant.
func (s *JWTTokenService) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, ErrMalformedToken
	}
	return claims, nil
}

// Validate checks signature, issuer, audience and the time window.
func (s *JWTTokenService) Validate(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return s.publicKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// grantScopes intersects the requested scopes with the user's roles. An
// empty request asks for everything. The reader scope is always granted.
func grantScopes(u *user.User, requested []string) []string {
	if len(requested) == 0 {
		requested = user.Roles
	}
	granted := []string{user.RoleReader}
	for _, scope := range requested {
		if scope == user.RoleReader {
			continue
		}
		if u.HasRole(scope) {
			granted = append(granted, scope)
		}
	}
	return granted
}

// SplitScopes breaks a requested scope string on spaces and plus signs, the
// two separators clients use interchangeably.
func SplitScopes(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == '+'
	})
	return fields
}

// Service runs the credential check for the token endpoint.
type Service struct {
	users  UserRepository
	tokens TokenService
	logger *slog.Logger
}

func NewService(users UserRepository, tokens TokenService, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

// Authenticate verifies the credentials and issues a token. Unknown users
// and wrong passwords both map to not-found so the endpoint never confirms
// which usernames exist; an inactive account is the only case that answers
// forbidden.
func (s *Service) Authenticate(username, password, scope string) (string, error) {
	u, err := s.users.ByUsername(username)
	if err != nil {
		s.logger.Error("looking up user for login", "error", err)
		return "", internal.NewInternalError(err)
	}
	if u == nil {
		return "", internal.NewNotFoundError()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", internal.NewNotFoundError()
	}
	if !u.IsActiveUser() {
		return "", internal.NewForbiddenError()
	}

	token, err := s.tokens.Issue(u, SplitScopes(scope))
	if err != nil {
		s.logger.Error("issuing token", "user_id", u.ID, "error", err)
		return "", internal.NewInternalError(err)
	}
	return token, nil
}
