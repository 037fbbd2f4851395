// Package auth provides token generation/validation, password hashing, and
// the request guard middleware for the Script Shelf API.
//
// AUTHENTICATION FLOW:
//  1. The user registers with email/password (or signs in via GitHub OAuth).
//  2. Login verifies the credentials and issues a signed JWT.
//  3. Clients send the token on every request in the X-Auth-Token header.
//  4. The RequireAuth middleware validates it and puts the user ID in the
//     request context for downstream handlers.
//
// Tokens are stateless — the server stores no session data. Everything needed
// (user ID, expiry) lives inside the signed token, and the HMAC signature
// guarantees it cannot be tampered with without the secret.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued token stays valid.
//
// Tokens are long-lived by design: there is no refresh-token flow, and the
// clients (browser extension, VS Code extension) have no good way to prompt
// for re-login mid-session. One year matches the original API contract.
const TokenTTL = 365 * 24 * time.Hour

const issuer = "script-shelf"

// TokenService signs and verifies the API's bearer tokens.
// The same HMAC secret is used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production,
// e.g. JWT_SECRET=$(openssl rand -hex 32).
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims embeds jwt.RegisteredClaims; the user ID travels in the standard
// "sub" (Subject) claim.
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a token for the given userID, valid for TokenTTL.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, TokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry.
// Used by tests to produce already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string and returns the userID it
// carries.
//
// Checks performed by the jwt library:
//   - signature is valid
//   - token is not expired
//   - issuer matches (rejects tokens minted by other apps sharing a secret)
//   - algorithm is HS256 (prevents algorithm-confusion attacks)
//
// Expired and tampered tokens both come back as errors; the middleware
// collapses them into one client-facing message, matching the original API.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
