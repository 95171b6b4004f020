package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastArgon() *ArgonHash {
	return &ArgonHash{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func TestArgon_RoundTrip(t *testing.T) {
	a := fastArgon()

	enc, err := a.GenerateFromPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, "$argon2id$v=19$m=1024,t=1,p=1$"))

	assert.True(t, a.VerifyPasswd("correct horse", enc))
	assert.False(t, a.VerifyPasswd("wrong horse", enc))
}

func TestArgon_SaltsDiffer(t *testing.T) {
	a := fastArgon()

	e1, err := a.GenerateFromPassword("same")
	require.NoError(t, err)
	e2, err := a.GenerateFromPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, e1, e2)
}

func TestArgon_MalformedNeverMatches(t *testing.T) {
	a := fastArgon()

	for _, e := range []string{
		"",
		"plaintext",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA",
		"$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA",
	} {
		assert.False(t, a.VerifyPasswd("pw", e), e)
	}
}

func TestTokenCodec_IssueAndRedeem(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewTokenCodec(0)
	c.Now = func() time.Time { return now }

	tok, err := c.Issue()
	require.NoError(t, err)

	assert.Len(t, tok.Secret, tokenSize*2)
	assert.Equal(t, HashToken(tok.Secret), tok.Hash)
	assert.NotEqual(t, tok.Secret, tok.Hash)
	assert.Equal(t, now.Add(DefaultTokenTTL), tok.ExpiresAt)

	assert.NoError(t, c.Redeem(tok.Secret, &tok.Hash, &tok.ExpiresAt))
}

func TestTokenCodec_Mismatch(t *testing.T) {
	c := NewTokenCodec(time.Minute)

	tok, err := c.Issue()
	require.NoError(t, err)

	assert.ErrorIs(t, c.Redeem("nope", &tok.Hash, &tok.ExpiresAt), ErrTokenMismatch)
	assert.ErrorIs(t, c.Redeem("", &tok.Hash, &tok.ExpiresAt), ErrTokenMismatch)
	assert.ErrorIs(t, c.Redeem(tok.Secret, nil, nil), ErrTokenMismatch)
}

func TestTokenCodec_ExpiredEvenWhenHashMatches(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewTokenCodec(10 * time.Minute)
	c.Now = func() time.Time { return now }

	tok, err := c.Issue()
	require.NoError(t, err)

	now = now.Add(11 * time.Minute)
	assert.ErrorIs(t, c.Redeem(tok.Secret, &tok.Hash, &tok.ExpiresAt), ErrTokenExpired)
}

func TestTokenCodec_SecretsAreUnique(t *testing.T) {
	c := NewTokenCodec(time.Minute)
	seen := map[string]bool{}

	for range 50 {
		tok, err := c.Issue()
		require.NoError(t, err)
		require.False(t, seen[tok.Secret])
		seen[tok.Secret] = true
	}
}

func TestSession_IssueAndValidate(t *testing.T) {
	s := NewSessionIssuer("super-secret", "inkwell", time.Hour)

	tok, err := s.Issue("user-123")
	require.NoError(t, err)

	id, err := s.Validate(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", id)
}

func TestSession_Expired(t *testing.T) {
	s := NewSessionIssuer("secret", "inkwell", time.Hour)

	tok, err := s.Issue("u1")
	require.NoError(t, err)

	s.Now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = s.Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidSession)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestSession_WrongSecret(t *testing.T) {
	tok, err := NewSessionIssuer("right-secret", "inkwell", time.Hour).Issue("u2")
	require.NoError(t, err)

	_, err = NewSessionIssuer("wrong-secret", "inkwell", time.Hour).Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSession_WrongIssuer(t *testing.T) {
	tok, err := NewSessionIssuer("k", "someone-else", time.Hour).Issue("u3")
	require.NoError(t, err)

	_, err = NewSessionIssuer("k", "inkwell", time.Hour).Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSession_Malformed(t *testing.T) {
	s := NewSessionIssuer("k", "inkwell", time.Hour)

	for _, tok := range []string{"", "not.a.jwt", "abc"} {
		_, err := s.Validate(tok)
		assert.ErrorIs(t, err, ErrInvalidSession, tok)
	}
}

func TestSession_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "inkwell",
			Subject:   "u4",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "u4",
		Type:   sessionType,
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewSessionIssuer("k", "inkwell", time.Hour).Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSession_RejectsWrongType(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "inkwell",
			Subject:   "u5",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "u5",
		Type:   "refresh",
	}

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewSessionIssuer("k", "inkwell", time.Hour).Validate(tok)
	assert.ErrorIs(t, err, ErrInvalidSession)
}
