package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"
)

const (
	tokenSize = 32

	// DefaultTokenTTL is how long a verification or reset link stays valid
	DefaultTokenTTL = 10 * time.Minute
)

var (
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenMismatch = errors.New("token invalid or already used")
)

// IssuedToken holds a freshly generated secret. Secret is handed to the user
// exactly once, only Hash and ExpiresAt are ever persisted.
type IssuedToken struct {
	Secret    string
	Hash      string
	ExpiresAt time.Time
}

type TokenCodec struct {
	TTL time.Duration
	Now func() time.Time
}

func NewTokenCodec(ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	return &TokenCodec{
		TTL: ttl,
		Now: time.Now,
	}
}

func (c *TokenCodec) Issue() (*IssuedToken, error) {
	b, err := genRandByt(tokenSize)
	if err != nil {
		return nil, err
	}

	secret := hex.EncodeToString(b)

	return &IssuedToken{
		Secret:    secret,
		Hash:      HashToken(secret),
		ExpiresAt: c.Now().Add(c.TTL),
	}, nil
}

// Redeem checks a presented secret against the stored hash and expiry.
// On success the caller has to clear both stored fields in the same update,
// otherwise the token can be replayed.
func (c *TokenCodec) Redeem(presented string, storedHash *string, storedExpiry *time.Time) error {
	if presented == "" || storedHash == nil || storedExpiry == nil {
		return ErrTokenMismatch
	}

	calc := HashToken(presented)
	if subtle.ConstantTimeCompare([]byte(calc), []byte(*storedHash)) != 1 {
		return ErrTokenMismatch
	}

	if c.Now().After(*storedExpiry) {
		return ErrTokenExpired
	}

	return nil
}

// HashToken returns the hex encoded sha256 digest used as the lookup key
func HashToken(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
