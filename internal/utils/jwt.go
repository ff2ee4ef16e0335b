package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/sha256" // SHA‑256 hashing for revoked token storage
	"encoding/hex"  // hex encoding of digests
	"errors"        // sentinel verification errors
	"time"          // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token type values embedded in the "type" claim.  A token of one type must
// never be accepted where the other is required; VerifyToken enforces this
// and reports the violation as ErrWrongTokenType rather than a silent pass.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Verification failures.  ErrInvalidToken covers bad signatures, malformed
// tokens and expired tokens; ErrWrongTokenType is returned when the token is
// otherwise valid but carries the wrong "type" claim.
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// SignedToken represents a serialized JWT along with its expiry.  The Token
// field contains the JWT string.  Exp stores the absolute expiration time.
// Access tokens are short-lived and sent in the Authorization header when
// calling protected endpoints; refresh tokens live longer and are only ever
// exchanged for new access tokens.
type SignedToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 access JWT for a user.  It takes
// the signing secret, the user's email (the subject claim) and a TTL in
// minutes.  The JWT includes the subject (sub), token type (type),
// expiration (exp) and issued at (iat) claims.
func NewAccessToken(secret, email string, ttlMin int) (SignedToken, error) {
	return newToken(secret, email, TokenTypeAccess, time.Duration(ttlMin)*time.Minute)
}

// NewRefreshToken builds and signs an HS256 refresh JWT for a user.  The
// ttlDays parameter controls how many days the token stays valid.  Refresh
// tokens are self-contained: nothing is persisted server-side, the signature
// and the exp claim are the whole story.
func NewRefreshToken(secret, email string, ttlDays int) (SignedToken, error) {
	return newToken(secret, email, TokenTypeRefresh, time.Duration(ttlDays)*24*time.Hour)
}

func newToken(secret, email, typ string, ttl time.Duration) (SignedToken, error) {
	// Calculate the expiration time by adding the TTL to the current UTC time.
	exp := time.Now().UTC().Add(ttl)
	claims := jwt.MapClaims{
		"sub":  email,
		"type": typ,
		"exp":  exp.Unix(),
		"iat":  time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return SignedToken{}, err
	}
	return SignedToken{Token: signed, Exp: exp}, nil
}

// VerifyToken parses and validates a JWT and checks its "type" claim against
// expectedType.  It returns the subject (the user's email) on success.  Any
// signature, structure or expiry problem yields ErrInvalidToken; a valid
// token of the wrong type yields ErrWrongTokenType.  Expiry comparison is
// exact – clock skew is not compensated.
func VerifyToken(secret, raw, expectedType string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Reject tokens signed with anything but HMAC; asymmetric headers on
		// an HS256 secret are a classic confusion attack.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	typ, _ := claims["type"].(string)
	if typ != expectedType {
		return "", ErrWrongTokenType
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}

// HashTokenRaw returns the SHA‑256 hash of a raw token as a hex string.
// Tokens surrendered at logout are stored hashed so a leaked revocation
// table cannot be replayed.
func HashTokenRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
