// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/quillnotes/quill/pkg/errutil"
)

// SessionManager issues, validates, revokes, and sweeps sessions.
//
// Validity is re-checked against the store on every Validate call; there is
// no in-process cache, so a swept or deleted session is rejected on the
// next request.
type SessionManager struct {
	sessions SessionRepository
	maxAge   time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionManager creates a SessionManager. maxAge <= 0 falls back to
// DefaultSessionMaxAge.
func NewSessionManager(sessions SessionRepository, maxAge time.Duration) (*SessionManager, error) {
	if sessions == nil {
		return nil, oops.Code("SESSION_MANAGER_INVALID").Errorf("sessions repository is required")
	}
	if maxAge <= 0 {
		maxAge = DefaultSessionMaxAge
	}
	return &SessionManager{
		sessions: sessions,
		maxAge:   maxAge,
		logger:   slog.Default(),
		now:      time.Now,
	}, nil
}

// MaxAge returns the configured session lifetime.
func (m *SessionManager) MaxAge() time.Duration {
	return m.maxAge
}

// Create issues a new session for the user and returns the bearer token.
// The token is returned exactly once; only its hash is stored.
func (m *SessionManager) Create(ctx context.Context, userID ulid.ULID) (string, *Session, error) {
	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return "", nil, oops.Code("SESSION_CREATE_FAILED").
			With("operation", "generate token").
			Wrap(err)
	}

	session, err := NewSession(userID, tokenHash, m.now().Add(m.maxAge))
	if err != nil {
		return "", nil, oops.Code("SESSION_CREATE_FAILED").
			With("operation", "construct session").
			Wrap(err)
	}

	if err := m.sessions.Create(ctx, session); err != nil {
		return "", nil, oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			With("user_id", userID.String()).
			Wrap(err)
	}

	return token, session, nil
}

// Validate resolves a bearer token to its user and session.
// Unknown tokens and expired sessions both return ErrUnauthenticated;
// an expired session is deleted on detection, best effort.
func (m *SessionManager) Validate(ctx context.Context, token string) (*User, *Session, error) {
	if token == "" {
		return nil, nil, oops.Code("SESSION_INVALID").Wrap(ErrUnauthenticated)
	}

	tokenHash := HashSessionToken(token)

	session, user, err := m.sessions.GetWithUser(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, oops.Code("SESSION_INVALID").Wrap(ErrUnauthenticated)
		}
		return nil, nil, oops.Code("SESSION_VALIDATE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if session.IsExpiredAt(m.now()) {
		// Lazy eviction. Failure here is tolerated: the sweep will catch it,
		// and the session is rejected either way.
		if delErr := m.sessions.DeleteByTokenHash(ctx, tokenHash); delErr != nil && !errors.Is(delErr, ErrNotFound) {
			errutil.LogWarn(m.logger, "failed to evict expired session", delErr)
		}
		return nil, nil, oops.Code("SESSION_EXPIRED").Wrap(ErrUnauthenticated)
	}

	return user, session, nil
}

// Delete revokes the session for the given bearer token. Idempotent:
// deleting an unknown or already-deleted token succeeds.
func (m *SessionManager) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	err := m.sessions.DeleteByTokenHash(ctx, HashSessionToken(token))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	return nil
}

// SweepExpired bulk-deletes expired sessions and returns the count.
// Not required for correctness (Validate re-checks expiry); it bounds
// storage growth.
func (m *SessionManager) SweepExpired(ctx context.Context) (int64, error) {
	deleted, err := m.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, oops.Code("SESSION_SWEEP_FAILED").Wrap(err)
	}
	return deleted, nil
}
