package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-signing"

func TestCreateAndValidateAccessToken(t *testing.T) {
	roles := []string{"editor", "chief"}

	token, err := CreateAccessToken("alex", roles, testSecret)
	if err != nil {
		t.Fatalf("CreateAccessToken: unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("CreateAccessToken: returned empty token")
	}

	claims, err := ValidateAccessToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateAccessToken: unexpected error: %v", err)
	}
	if claims.Username() != "alex" {
		t.Errorf("Username() = %q, want alex", claims.Username())
	}
	if len(claims.Roles) != 2 || claims.Roles[0] != "editor" || claims.Roles[1] != "chief" {
		t.Errorf("Roles = %v, want [editor chief]", claims.Roles)
	}
	if claims.Issuer != "contentapi" {
		t.Errorf("Issuer = %q, want contentapi", claims.Issuer)
	}
}

func TestValidateAccessToken_WrongSecret(t *testing.T) {
	token, err := CreateAccessToken("alex", nil, testSecret)
	if err != nil {
		t.Fatalf("CreateAccessToken: unexpected error: %v", err)
	}

	if _, err := ValidateAccessToken(token, "wrong-secret"); err == nil {
		t.Fatal("ValidateAccessToken: expected error for wrong secret, got nil")
	}
}

func TestValidateAccessToken_Expired(t *testing.T) {
	// Manually create an expired token.
	past := time.Now().Add(-1 * time.Hour)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alex",
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
			Issuer:    "contentapi",
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := ValidateAccessToken(signed, testSecret); err == nil {
		t.Fatal("ValidateAccessToken: expected error for expired token, got nil")
	}
}

func TestValidateAccessToken_Garbage(t *testing.T) {
	if _, err := ValidateAccessToken("not.a.token", testSecret); err == nil {
		t.Fatal("ValidateAccessToken: expected error for malformed token, got nil")
	}
}
