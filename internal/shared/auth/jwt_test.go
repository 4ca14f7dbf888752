package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSignVerifyRoundTrip(t *testing.T) {
	keys, err := NewKeys("secret", "dev")
	if err != nil {
		t.Fatalf("new keys: %v", err)
	}
	token, err := keys.Sign(Claims{Email: "a@lbs.edu", RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := keys.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@lbs.edu" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	keys, _ := NewKeys("secret", "dev")
	other, _ := NewKeys("other", "dev")

	expired, _ := keys.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}})
	foreign, _ := other.Sign(Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong secret", foreign},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := keys.Verify(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNewKeysRequiresSecretInProduction(t *testing.T) {
	if _, err := NewKeys("", "production"); err == nil {
		t.Fatalf("expected error for empty production secret")
	}
	if _, err := NewKeys("", "dev"); err != nil {
		t.Fatalf("dev should fall back: %v", err)
	}
}
