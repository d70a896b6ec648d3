package auth

import (
	"testing"
	"time"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	token, err := manager.GenerateToken("admin", "admin@example.com", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "admin" || claims.Email != "admin@example.com" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := manager.ParseToken(token + "tampered"); err == nil {
		t.Fatalf("expected parse error for tampered token")
	}
}

func TestJWTManager_EmptySecret(t *testing.T) {
	manager := NewJWTManager("", time.Hour)
	if _, err := manager.GenerateToken("admin", "admin@example.com", "admin"); err == nil {
		t.Fatalf("expected error when secret is empty")
	}
}

func TestJWTManager_DefaultTTL(t *testing.T) {
	manager := NewJWTManager("secret", 0)
	token, err := manager.GenerateToken("admin", "admin@example.com", "admin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) < 23*time.Hour {
		t.Fatalf("expected 24h default ttl, got %+v", claims.ExpiresAt)
	}
}
