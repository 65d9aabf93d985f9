package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/reservaid/reservaid/internal/common/config"
)

func TestGenerateAccessToken(t *testing.T) {
	cfg := config.AuthConfig{
		JWTSecret: "test-secret",
		Issuer:    "reservaid",
		Audience:  "reservaid",
	}

	token, expiresAt, err := GenerateAccessToken(cfg, "u-1", "vendeur", "Karim", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if token == "" {
		t.Fatalf("empty token")
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiresAt in the past: %v", expiresAt)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tk *jwt.Token) (any, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "u-1" {
		t.Fatalf("subject mismatch: %s", claims.Subject)
	}
	if claims.Role != "vendeur" {
		t.Fatalf("role mismatch: %s", claims.Role)
	}
	if claims.Issuer != "reservaid" {
		t.Fatalf("issuer mismatch: %s", claims.Issuer)
	}
}

func TestGenerateAccessTokenRequiresSecret(t *testing.T) {
	_, _, err := GenerateAccessToken(config.AuthConfig{}, "u-1", "client", "", time.Hour)
	if err == nil {
		t.Fatalf("expected error with empty secret")
	}
}
