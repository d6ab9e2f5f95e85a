package utils

import (
	"errors"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash equals the plain password")
	}
	if !CheckPassword("s3cret", hash) {
		t.Error("CheckPassword rejected the correct password")
	}
	if CheckPassword("wrong", hash) {
		t.Error("CheckPassword accepted a wrong password")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("alice", "test-secret", time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	username, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if username != "alice" {
		t.Errorf("username = %q, want alice", username)
	}

	// The raw Authorization header value also parses.
	username, err = ParseJWT("Bearer "+token, "test-secret")
	if err != nil || username != "alice" {
		t.Errorf("ParseJWT with Bearer prefix: %q, %v", username, err)
	}
}

func TestParseJWTExpired(t *testing.T) {
	token, err := GenerateJWT("alice", "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, "test-secret"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired token: err = %v, want ErrInvalidToken", err)
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("alice", "test-secret", time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, "other-secret"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("wrong secret: err = %v, want ErrInvalidToken", err)
	}
}

func TestParseJWTGarbage(t *testing.T) {
	if _, err := ParseJWT("not-a-token", "test-secret"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: err = %v, want ErrInvalidToken", err)
	}
}

func TestParseJWTMissingUsernameClaim(t *testing.T) {
	token, err := GenerateJWT("", "test-secret", time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	if _, err := ParseJWT(token, "test-secret"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("empty username claim: err = %v, want ErrInvalidToken", err)
	}
}
