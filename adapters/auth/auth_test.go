package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	token, expiresAt, err := svc.GenerateToken("u1", "dev@example.com", "admin")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if time.Until(expiresAt) < 59*time.Minute {
		t.Errorf("expiry too soon: %v", expiresAt)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "dev@example.com" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, _, _ := NewTokenService("secret-a", time.Hour).GenerateToken("u1", "a@b.c", "user")

	if _, err := NewTokenService("secret-b", time.Hour).ValidateToken(token); err == nil {
		t.Error("token signed with another secret should not validate")
	}
}

func TestVerify_Cookie(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	token, _, _ := svc.GenerateToken("u1", "dev@example.com", "admin")

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: token})

	user, err := svc.Verify(r)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.ID != "u1" || user.Role != "admin" {
		t.Errorf("user = %+v", user)
	}
}

func TestVerify_BearerHeader(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)
	token, _, _ := svc.GenerateToken("u2", "x@y.z", "user")

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	user, err := svc.Verify(r)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.ID != "u2" {
		t.Errorf("user = %+v", user)
	}
}

func TestVerify_Anonymous(t *testing.T) {
	svc := NewTokenService("test-secret", time.Hour)

	_, err := svc.Verify(httptest.NewRequest("GET", "/", nil))
	if !errors.Is(err, ErrNoCredentials) {
		t.Errorf("err = %v, want ErrNoCredentials", err)
	}
}

func TestHasher(t *testing.T) {
	h := NewHasher(4) // minimum cost, keeps the test fast

	hash, err := h.Hash("hunter2")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !h.Compare(hash, "hunter2") {
		t.Error("Compare should match the original plaintext")
	}
	if h.Compare(hash, "wrong") {
		t.Error("Compare should reject a different plaintext")
	}
}
