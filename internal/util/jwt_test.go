package util

import (
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	secret := "test-secret"

	token, err := GenerateToken("user-123", "alice", "student", secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := ValidateToken(token, secret)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	if claims.UserID != "user-123" {
		t.Errorf("expected user ID %q, got %q", "user-123", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("expected username %q, got %q", "alice", claims.Username)
	}
	if claims.Role != "student" {
		t.Errorf("expected role %q, got %q", "student", claims.Role)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("user-123", "alice", "student", "secret-a", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ValidateToken(token, "secret-b"); err == nil {
		t.Error("expected error for token signed with a different secret")
	}
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken("user-123", "alice", "student", "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if _, err := ValidateToken(token, "test-secret"); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestValidateToken_Garbage(t *testing.T) {
	if _, err := ValidateToken("not-a-token", "test-secret"); err == nil {
		t.Error("expected error for malformed token")
	}
}
