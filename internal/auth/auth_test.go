package auth

import (
	"testing"
	"time"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "s3cret" {
		t.Fatalf("hash must not equal the plaintext")
	}
	if !CheckPassword(hash, "s3cret") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("wrong password accepted")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := SignJWT(42, "test-secret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	uid, err := ParseJWT(token, "test-secret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if uid != 42 {
		t.Fatalf("got uid %d want 42", uid)
	}

	if _, err := ParseJWT(token, "other-secret"); err != ErrInvalidToken {
		t.Fatalf("wrong secret: want ErrInvalidToken, got %v", err)
	}
	if _, err := ParseJWT("not.a.token", "test-secret"); err != ErrInvalidToken {
		t.Fatalf("garbage token: want ErrInvalidToken, got %v", err)
	}
}

func TestJWTExpiry(t *testing.T) {
	token, err := SignJWT(1, "test-secret", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(token, "test-secret"); err != ErrInvalidToken {
		t.Fatalf("expired token: want ErrInvalidToken, got %v", err)
	}
}
