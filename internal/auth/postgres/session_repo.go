// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/quillnotes/quill/internal/auth"
	"github.com/quillnotes/quill/internal/store"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	db store.DB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db store.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		session.ID.String(),
		session.UserID.String(),
		session.TokenHash,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetWithUser retrieves a session by token hash joined with its owning user.
// One atomic lookup; the caller decides expiry.
func (r *SessionRepository) GetWithUser(ctx context.Context, tokenHash string) (*auth.Session, *auth.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT s.id, s.user_id, s.token_hash, s.expires_at, s.created_at,
		       u.id, u.email, u.password_hash, u.name, u.failed_attempts, u.locked_until, u.created_at, u.updated_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token_hash = $1
	`, tokenHash)

	var s auth.Session
	var u auth.User
	var sessionIDStr, sessionUserIDStr, userIDStr string

	err := row.Scan(
		&sessionIDStr,
		&sessionUserIDStr,
		&s.TokenHash,
		&s.ExpiresAt,
		&s.CreatedAt,
		&userIDStr,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.FailedAttempts,
		&u.LockedUntil,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get session with user").
			Wrap(err)
	}

	if s.ID, err = ulid.Parse(sessionIDStr); err != nil {
		return nil, nil, oops.Code("SESSION_CORRUPT_ID").With("id", sessionIDStr).Wrap(err)
	}
	if s.UserID, err = ulid.Parse(sessionUserIDStr); err != nil {
		return nil, nil, oops.Code("SESSION_CORRUPT_ID").With("user_id", sessionUserIDStr).Wrap(err)
	}
	if u.ID, err = ulid.Parse(userIDStr); err != nil {
		return nil, nil, oops.Code("USER_CORRUPT_ID").With("id", userIDStr).Wrap(err)
	}

	return &s, &u, nil
}

// DeleteByTokenHash removes a session. Reports auth.ErrNotFound when no
// row matched; the manager treats that as success for idempotent logout.
func (r *SessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM sessions WHERE token_hash = $1
	`, tokenHash)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteExpired removes every session whose expiry is at or before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.Exec(ctx, `
		DELETE FROM sessions WHERE expires_at <= now()
	`)
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}
