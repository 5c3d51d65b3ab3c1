// Package auth issues and validates the access tokens that grant write
// access to the content API.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const accessTokenExpiry = 15 * time.Minute

// Claims holds the JWT claims of an access token. The username is stored
// in the standard "sub" field; the role list is a custom claim consumed
// by the permission checks.
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// Username returns the authenticated user's name from the subject claim.
func (c *Claims) Username() string { return c.Subject }

// CreateAccessToken creates a signed JWT access token carrying the
// username as subject and the user's roles as a custom claim, with a
// 15-minute expiry. The token is signed with HMAC-SHA256.
func CreateAccessToken(username string, roles []string, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenExpiry)),
			Issuer:    "contentapi",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ValidateAccessToken parses and validates the given JWT string using the
// provided HMAC secret. It returns the extracted Claims on success, or an
// error if the token is malformed, expired, or signed with the wrong key.
func ValidateAccessToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid access token claims")
	}

	return claims, nil
}
