package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenLifetime is the issued-at to expiry offset applied when no
// lifetime is configured.
const DefaultTokenLifetime = 24 * time.Hour

var (
	// ErrTokenInvalid indicates the token is malformed or its signature does
	// not verify against the signing secret.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired indicates the token was well-formed and authentic but
	// its expiry timestamp has passed.
	ErrTokenExpired = errors.New("token expired")
)

// Claims is the claim set carried by issued tokens: subject, issued-at, and
// expiry. Tokens are immutable once issued; there is no refresh.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenAuthority issues and validates HMAC-signed session tokens.
type TokenAuthority struct {
	secret   []byte
	lifetime time.Duration
}

// NewTokenAuthority constructs a TokenAuthority around the provisioned
// signing secret. The secret must already have passed provisioning
// validation; an empty secret is rejected rather than silently defaulted.
func NewTokenAuthority(secret []byte, lifetime time.Duration) (*TokenAuthority, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("token authority: signing secret is empty")
	}
	if lifetime <= 0 {
		lifetime = DefaultTokenLifetime
	}
	return &TokenAuthority{secret: secret, lifetime: lifetime}, nil
}

// Lifetime returns the configured issued-at to expiry offset.
func (a *TokenAuthority) Lifetime() time.Duration {
	return a.lifetime
}

// Issue builds and signs a token with claims {sub, iat, exp} where exp is
// now plus the configured lifetime.
func (a *TokenAuthority) Issue(subject string, now time.Time) (string, error) {
	if strings.TrimSpace(subject) == "" {
		return "", fmt.Errorf("token authority: subject is required")
	}

	now = now.UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Validate decodes the token, verifies its signature, and checks expiry
// against the provided reference time. It returns ErrTokenExpired when the
// reference time is at or past the expiry claim and ErrTokenInvalid for any
// structural or signature failure.
func (a *TokenAuthority) Validate(token string, now time.Time) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	now = now.UTC()
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil || strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrTokenInvalid
	}
	// jwt treats a token as live until strictly after exp; the contract here
	// is exclusive at the boundary.
	if !now.Before(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}
