package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	st, err := NewAccessToken(testSecret, "user@example.com", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if st.Token == "" {
		t.Fatal("empty token string")
	}
	if !st.Exp.After(time.Now()) {
		t.Fatal("expiry not in the future")
	}

	email, err := VerifyToken(testSecret, st.Token, TokenTypeAccess)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if email != "user@example.com" {
		t.Fatalf("subject = %q, want user@example.com", email)
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	st, err := NewRefreshToken(testSecret, "user@example.com", 7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	_, err = VerifyToken(testSecret, st.Token, TokenTypeAccess)
	if !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("err = %v, want ErrWrongTokenType", err)
	}
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	st, _ := NewAccessToken(testSecret, "user@example.com", 15)
	_, err := VerifyToken(testSecret, st.Token, TokenTypeRefresh)
	if !errors.Is(err, ErrWrongTokenType) {
		t.Fatalf("err = %v, want ErrWrongTokenType", err)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	st, _ := NewAccessToken(testSecret, "user@example.com", 15)
	_, err := VerifyToken("another-secret", st.Token, TokenTypeAccess)
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  "user@example.com",
		"type": TokenTypeAccess,
		"exp":  time.Now().UTC().Add(-time.Minute).Unix(),
		"iat":  time.Now().UTC().Add(-time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyToken(testSecret, raw, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyTokenMissingSubject(t *testing.T) {
	claims := jwt.MapClaims{
		"type": TokenTypeAccess,
		"exp":  time.Now().UTC().Add(time.Minute).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := VerifyToken(testSecret, raw, TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	if _, err := VerifyToken(testSecret, "not.a.jwt", TokenTypeAccess); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestHashTokenRawStable(t *testing.T) {
	a := HashTokenRaw("some-token")
	b := HashTokenRaw("some-token")
	if a != b {
		t.Fatal("hash not deterministic")
	}
	if a == HashTokenRaw("other-token") {
		t.Fatal("distinct inputs collided")
	}
	if len(a) != 64 {
		t.Fatalf("hash length = %d, want 64 hex chars", len(a))
	}
}
