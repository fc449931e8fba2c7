package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/techsupport-hub/portal/internal/pkg/access"
)

var (
	// ErrInvalidToken covers every reason a token cannot be trusted.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrMissingSecret means the signing secret was never configured.
	ErrMissingSecret = errors.New("token signing secret not configured")
)

// Claims are the identity claims carried by the API's access token.
// Only Role is used for access decisions.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AccessRole returns the parsed role claim.
func (c *Claims) AccessRole() access.Role {
	if c == nil {
		return access.RoleNone
	}
	return access.ParseRole(c.Role)
}

// Verifier decodes tokens with a fixed secret.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(token string) (*Claims, error)

func (f VerifierFunc) Verify(token string) (*Claims, error) { return f(token) }

// NewVerifier returns a Verifier bound to secret.
func NewVerifier(secret string) Verifier {
	return VerifierFunc(func(token string) (*Claims, error) {
		return VerifyToken(token, secret)
	})
}

// VerifyToken parses and validates an HMAC-signed access token.
func VerifyToken(tokenString, secret string) (*Claims, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateToken signs a token the way the API does. Used by tests and the
// dev token route; the portal never issues production tokens.
func GenerateToken(secret, userID, email string, role access.Role, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ExpiresAt reads the exp claim without verifying the signature. It only
// sizes the browser cookie; access decisions always go through VerifyToken.
func ExpiresAt(tokenString string) (time.Time, bool) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
