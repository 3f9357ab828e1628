package service

import (
	"errors"
	"testing"
	"time"

	"github.com/jufeed/feedback-backend/internal/config"
)

func newTestAuthService() *AuthService {
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4,
	}
	return NewAuthService(cfg, nil)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	auth := newTestAuthService()

	hash, err := auth.HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse" {
		t.Fatal("password stored in plaintext")
	}

	if err := auth.CheckPassword(hash, "correct horse"); err != nil {
		t.Fatalf("CheckPassword with right password: %v", err)
	}
	if err := auth.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("CheckPassword with wrong password: got %v, want ErrInvalidCredentials", err)
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	auth := newTestAuthService()

	token, err := auth.GenerateAdminToken(42)
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}

	claims, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.TokenType != TokenTypeAdmin {
		t.Fatalf("token type = %q, want admin", claims.TokenType)
	}
	if claims.UserID != 42 {
		t.Fatalf("user id = %d, want 42", claims.UserID)
	}
	if claims.ID == "" {
		t.Fatal("JTI missing")
	}
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	auth := newTestAuthService()

	token, err := auth.GenerateAdminToken(7)
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}

	other := NewAuthService(&config.Config{JWTSecret: "other-secret", JWTExpiry: time.Hour, BcryptCost: 4}, nil)
	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("token signed with a different secret validated")
	}

	if _, err := auth.ValidateToken(token + "x"); err == nil {
		t.Fatal("corrupted token validated")
	}
}
