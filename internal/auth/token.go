package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TokenTTL is the fixed validity window of an issued token.
const TokenTTL = 24 * time.Hour

var (
	// ErrInvalidSignature covers bad signatures and any structural decode failure.
	ErrInvalidSignature = apperrors.ErrInvalidSignature
	// ErrExpired is returned for correctly signed tokens past their expiry.
	ErrExpired = apperrors.ErrTokenExpired
)

// TokenCodec issues and verifies HS256 bearer tokens.
type TokenCodec struct {
	secret []byte
	now    func() time.Time
}

// NewTokenCodec builds a codec from a base64 encoded key. Keys that are not
// valid base64 are used as raw bytes.
func NewTokenCodec(secret string) (*TokenCodec, error) {
	if secret == "" {
		return nil, errors.New("auth: empty signing secret")
	}
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil || len(key) == 0 {
		key = []byte(secret)
	}
	return &TokenCodec{secret: key, now: time.Now}, nil
}

// Claims describes the token payload.
type Claims struct {
	jwt.RegisteredClaims
}

// Issue signs a token for subject valid for TokenTTL from issuedAt.
func (tc *TokenCodec) Issue(subject string, issuedAt time.Time) (string, time.Time, error) {
	expiresAt := issuedAt.Add(TokenTTL)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(tc.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// Verify checks the signature and then the expiry, returning the subject.
func (tc *TokenCodec) Verify(tokenStr string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tc.secret, nil
	}, jwt.WithTimeFunc(tc.now), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrInvalidSignature
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpired
		default:
			return "", ErrInvalidSignature
		}
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidSignature
	}
	return claims.Subject, nil
}
