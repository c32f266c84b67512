// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	// SessionTokenBytes is the entropy of a bearer token. 32 bytes of
	// crypto/rand output, 64 hex characters on the wire.
	SessionTokenBytes = 32

	// DefaultSessionMaxAge is the issued-session lifetime when the
	// configuration does not override it.
	DefaultSessionMaxAge = 7 * 24 * time.Hour
)

// Session binds a bearer token (stored hashed) to a user and an expiry.
// A session is valid if and only if it exists and ExpiresAt is strictly
// in the future at validation time.
type Session struct {
	ID        ulid.ULID `json:"id"`
	UserID    ulid.ULID `json:"userId"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewSession creates a validated Session.
func NewSession(userID ulid.ULID, tokenHash string, expiresAt time.Time) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}

	return &Session{
		ID:        ulid.Make(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// IsExpiredAt returns true if the session would be expired at the given time.
// Expiry exactly at t counts as expired: validity requires ExpiresAt > t.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !s.ExpiresAt.After(t)
}

// GenerateSessionToken creates a secure random bearer token and its hash.
// The plaintext token goes to the client; only the hash is persisted.
func GenerateSessionToken() (token, hash string, err error) {
	buf := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}

	token = hex.EncodeToString(buf)
	return token, HashSessionToken(token), nil
}

// HashSessionToken computes the SHA-256 hash of a bearer token.
func HashSessionToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifySessionToken checks a plaintext token against a stored hash in
// constant time.
func VerifySessionToken(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	computed := HashSessionToken(token)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1
}

// SessionRepository manages session persistence.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetWithUser retrieves a session by token hash, joined with its owning
	// user in a single lookup. Returns ErrNotFound (wrapped) when absent.
	GetWithUser(ctx context.Context, tokenHash string) (*Session, *User, error)

	// DeleteByTokenHash removes a session. Returns ErrNotFound (wrapped)
	// when no row matched.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteExpired removes every session whose expiry is at or before now
	// and returns the number of deleted rows.
	DeleteExpired(ctx context.Context) (int64, error)
}
