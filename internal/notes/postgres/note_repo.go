// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

// Package postgres implements the notes repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/quillnotes/quill/internal/notes"
	"github.com/quillnotes/quill/internal/store"
)

// NoteRepository implements notes.Repository using PostgreSQL.
//
// Every owner-scoped statement carries `WHERE id = $1 AND user_id = $2`;
// the database resolves ownership and existence in one atomic step.
type NoteRepository struct {
	db store.DB
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(db store.DB) *NoteRepository {
	return &NoteRepository{db: db}
}

// Create stores a new note.
func (r *NoteRepository) Create(ctx context.Context, note *notes.Note) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notes (id, user_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		note.ID.String(),
		note.UserID.String(),
		note.Title,
		note.Content,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return oops.Code("NOTE_CREATE_FAILED").
			With("operation", "insert note").
			With("user_id", note.UserID.String()).
			Wrap(err)
	}
	return nil
}

// ListByOwner returns the owner's notes ordered by updated_at descending.
func (r *NoteRepository) ListByOwner(ctx context.Context, userID ulid.ULID) ([]*notes.Note, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`, userID.String())
	if err != nil {
		return nil, oops.Code("NOTE_LIST_FAILED").
			With("operation", "list notes by owner").
			With("user_id", userID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var list []*notes.Note
	for rows.Next() {
		note, scanErr := scanNote(rows)
		if scanErr != nil {
			return nil, oops.Code("NOTE_SCAN_FAILED").
				With("operation", "scan note row").
				Wrap(scanErr)
		}
		list = append(list, note)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("NOTE_ROWS_ERROR").
			With("operation", "iterate note rows").
			Wrap(err)
	}

	return list, nil
}

// GetByOwner retrieves a note scoped by id and owner.
func (r *NoteRepository) GetByOwner(ctx context.Context, id, userID ulid.ULID) (*notes.Note, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, user_id, title, content, created_at, updated_at
		FROM notes
		WHERE id = $1 AND user_id = $2
	`, id.String(), userID.String())

	note, err := scanNote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NOTE_NOT_FOUND").Wrap(notes.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("NOTE_GET_FAILED").
			With("operation", "get note by owner").
			With("id", id.String()).
			Wrap(err)
	}
	return note, nil
}

// UpdateByOwner applies a patch in a single owner-scoped statement and
// returns the updated note.
func (r *NoteRepository) UpdateByOwner(ctx context.Context, id, userID ulid.ULID, patch notes.Patch) (*notes.Note, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE notes
		SET title = COALESCE($3, title),
		    content = COALESCE($4, content),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, content, created_at, updated_at
	`, id.String(), userID.String(), patch.Title, patch.Content)

	note, err := scanNote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("NOTE_NOT_FOUND").Wrap(notes.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("NOTE_UPDATE_FAILED").
			With("operation", "update note by owner").
			With("id", id.String()).
			Wrap(err)
	}
	return note, nil
}

// DeleteByOwner removes a note scoped by id and owner.
func (r *NoteRepository) DeleteByOwner(ctx context.Context, id, userID ulid.ULID) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM notes WHERE id = $1 AND user_id = $2
	`, id.String(), userID.String())
	if err != nil {
		return oops.Code("NOTE_DELETE_FAILED").
			With("operation", "delete note by owner").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("NOTE_NOT_FOUND").Wrap(notes.ErrNotFound)
	}
	return nil
}

// scanNote scans a note from either a pgx.Row or pgx.Rows.
func scanNote(row pgx.Row) (*notes.Note, error) {
	var n notes.Note
	var idStr, userIDStr string

	if err := row.Scan(
		&idStr,
		&userIDStr,
		&n.Title,
		&n.Content,
		&n.CreatedAt,
		&n.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if n.ID, err = ulid.Parse(idStr); err != nil {
		return nil, oops.Code("NOTE_CORRUPT_ID").With("id", idStr).Wrap(err)
	}
	if n.UserID, err = ulid.Parse(userIDStr); err != nil {
		return nil, oops.Code("NOTE_CORRUPT_ID").With("user_id", userIDStr).Wrap(err)
	}
	return &n, nil
}
