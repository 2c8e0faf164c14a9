package auth

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

func newTestCodec(t *testing.T, secret string, now time.Time) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(secret)
	require.NoError(t, err)
	codec.now = func() time.Time { return now }
	return codec
}

func TestTokenCodecRoundTrip(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, config.LegacySigningKey, issuedAt.Add(time.Hour))

	token, expiresAt, err := codec.Issue("alice", issuedAt)
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(24*time.Hour), expiresAt)
	assert.Len(t, strings.Split(token, "."), 3)

	subject, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestTokenCodecUsesDecodedLegacyKey(t *testing.T) {
	issuedAt := time.Now()
	codec := newTestCodec(t, config.LegacySigningKey, issuedAt)

	token, _, err := codec.Issue("bob", issuedAt)
	require.NoError(t, err)

	key, err := base64.StdEncoding.DecodeString(config.LegacySigningKey)
	require.NoError(t, err)
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return key, nil })
	require.NoError(t, err)
	sub, err := parsed.Claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "bob", sub)
}

func TestTokenCodecExpired(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, config.LegacySigningKey, issuedAt.Add(24*time.Hour+time.Second))

	token, _, err := codec.Issue("alice", issuedAt)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestTokenCodecStillValidJustBeforeExpiry(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, config.LegacySigningKey, issuedAt.Add(24*time.Hour-time.Second))

	token, _, err := codec.Issue("alice", issuedAt)
	require.NoError(t, err)

	subject, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestTokenCodecRejectsForeignKey(t *testing.T) {
	now := time.Now()
	issuer := newTestCodec(t, "another-secret-value", now)
	verifier := newTestCodec(t, config.LegacySigningKey, now)

	token, _, err := issuer.Issue("alice", now)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenCodecRejectsTamperedPayload(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, config.LegacySigningKey, now)

	token, _, err := codec.Issue("alice", now)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"admin","iat":1,"exp":9999999999}`))
	tampered := parts[0] + "." + forged + "." + parts[2]

	_, err = codec.Verify(tampered)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenCodecSignatureCheckedBeforeExpiry(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	issuer := newTestCodec(t, "another-secret-value", issuedAt)
	verifier := newTestCodec(t, config.LegacySigningKey, issuedAt.Add(48*time.Hour))

	token, _, err := issuer.Issue("alice", issuedAt)
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenCodecRejectsGarbage(t *testing.T) {
	codec := newTestCodec(t, config.LegacySigningKey, time.Now())

	for _, raw := range []string{"", "abc", "a.b.c", "Bearer x.y.z"} {
		_, err := codec.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalidSignature, raw)
	}
}

func TestTokenCodecRejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()
	codec := newTestCodec(t, config.LegacySigningKey, now)

	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(codec.secret)
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestNewTokenCodecRejectsEmptySecret(t *testing.T) {
	_, err := NewTokenCodec("")
	require.Error(t, err)
}
