package auth

import (
	"testing"

	"beatsensei/config"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("crate-digger-42")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "crate-digger-42" {
		t.Error("hash must not equal the plaintext password")
	}
	if !VerifyPassword("crate-digger-42", hash) {
		t.Error("correct password rejected")
	}
	if VerifyPassword("wrong-password", hash) {
		t.Error("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	InitAuth(&config.Config{JWTSecret: "test-secret"})

	token, err := GenerateToken(42, "digger")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Username != "digger" {
		t.Errorf("Username = %q, want digger", claims.Username)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	InitAuth(&config.Config{JWTSecret: "test-secret"})

	if _, err := ParseToken("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}
