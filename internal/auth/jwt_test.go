package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("test-secret", 15*time.Minute)

	raw, err := m.GenerateAccessToken(42, "sam@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	claims, err := m.VerifyAccessToken(raw)
	if err != nil {
		t.Fatalf("VerifyAccessToken error: %v", err)
	}

	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID error: %v", err)
	}
	if id != 42 {
		t.Fatalf("got subject %d, want 42", id)
	}
	if claims.Email != "sam@example.com" {
		t.Fatalf("got email %q", claims.Email)
	}

	ttl := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if ttl != 15*time.Minute {
		t.Fatalf("got ttl %s, want 15m", ttl)
	}
}

func TestManager_ExpiredTokenRejected(t *testing.T) {
	m := NewManager("test-secret", 15*time.Minute)

	issuedAt := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issuedAt }

	raw, err := m.GenerateAccessToken(1, "a@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	m.now = time.Now

	_, err = m.VerifyAccessToken(raw)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestManager_WrongSecretRejected(t *testing.T) {
	issuer := NewManager("secret-a", time.Minute)
	verifier := NewManager("secret-b", time.Minute)

	raw, err := issuer.GenerateAccessToken(1, "a@example.com")
	if err != nil {
		t.Fatalf("GenerateAccessToken error: %v", err)
	}

	if _, err := verifier.VerifyAccessToken(raw); err == nil {
		t.Fatalf("expected signature error")
	}
}

func TestManager_RejectsOtherAlgorithms(t *testing.T) {
	m := NewManager("test-secret", time.Minute)

	claims := Claims{
		Email: "a@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	if _, err := m.VerifyAccessToken(raw); err == nil {
		t.Fatalf("expected alg none to be rejected")
	}
}

func TestManager_RejectsNonNumericSubject(t *testing.T) {
	m := NewManager("test-secret", time.Minute)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-a-number",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := m.VerifyAccessToken(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
