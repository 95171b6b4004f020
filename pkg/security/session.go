package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultSessionTTL = time.Hour * 24 * 30

	sessionType = "auth"
)

var ErrInvalidSession = errors.New("session token invalid")

// Claims binds the user ID and token type to the standard claims
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Type   string `json:"type"`
}

// SessionIssuer mints and validates stateless HS256 session tokens.
// There is no revocation list, a token stays valid until it expires.
type SessionIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	Now    func() time.Time
}

func NewSessionIssuer(secret, issuer string, ttl time.Duration) *SessionIssuer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &SessionIssuer{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		Now:    time.Now,
	}
}

func (s *SessionIssuer) Issue(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("no user ID provided")
	}

	now := s.Now()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID: userID,
		Type:   sessionType,
	})

	return t.SignedString(s.secret)
}

// Validate returns the user ID embedded in a token. Every failure wraps
// ErrInvalidSession.
func (s *SessionIssuer) Validate(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrInvalidSession
	}

	claims := &Claims{}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}

		return s.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w, %w", ErrInvalidSession, err)
	}

	if !token.Valid {
		return "", ErrInvalidSession
	}

	if claims.Type != sessionType || claims.UserID == "" || claims.UserID != claims.Subject {
		return "", ErrInvalidSession
	}

	return claims.UserID, nil
}
