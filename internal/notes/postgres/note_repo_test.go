// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillnotes/quill/internal/notes"
)

func newTestNote(t *testing.T) *notes.Note {
	t.Helper()
	note, err := notes.NewNote(ulid.Make(), "Groceries", "milk, eggs")
	require.NoError(t, err)
	return note
}

func noteColumns() []string {
	return []string{"id", "user_id", "title", "content", "created_at", "updated_at"}
}

func noteRow(note *notes.Note) *pgxmock.Rows {
	return pgxmock.NewRows(noteColumns()).AddRow(
		note.ID.String(), note.UserID.String(), note.Title, note.Content,
		note.CreatedAt, note.UpdatedAt,
	)
}

func TestNoteRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	note := newTestNote(t)
	mock.ExpectExec(`INSERT INTO notes`).
		WithArgs(
			note.ID.String(), note.UserID.String(), note.Title, note.Content,
			note.CreatedAt, note.UpdatedAt,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewNoteRepository(mock)
	require.NoError(t, repo.Create(context.Background(), note))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoteRepository_ListByOwner(t *testing.T) {
	t.Run("returns owner's notes", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		owner := ulid.Make()
		first, err := notes.NewNote(owner, "First", "")
		require.NoError(t, err)
		second, err := notes.NewNote(owner, "Second", "")
		require.NoError(t, err)

		rows := pgxmock.NewRows(noteColumns()).
			AddRow(second.ID.String(), owner.String(), second.Title, second.Content, second.CreatedAt, second.UpdatedAt).
			AddRow(first.ID.String(), owner.String(), first.Title, first.Content, first.CreatedAt, first.UpdatedAt)
		mock.ExpectQuery(`SELECT (.+) FROM notes`).
			WithArgs(owner.String()).
			WillReturnRows(rows)

		repo := NewNoteRepository(mock)
		list, err := repo.ListByOwner(context.Background(), owner)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Second", list[0].Title)
		assert.Equal(t, "First", list[1].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no notes yields empty list", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		owner := ulid.Make()
		mock.ExpectQuery(`SELECT (.+) FROM notes`).
			WithArgs(owner.String()).
			WillReturnRows(pgxmock.NewRows(noteColumns()))

		repo := NewNoteRepository(mock)
		list, err := repo.ListByOwner(context.Background(), owner)
		require.NoError(t, err)
		assert.Empty(t, list)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNoteRepository_GetByOwner(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		note := newTestNote(t)
		mock.ExpectQuery(`SELECT (.+) FROM notes`).
			WithArgs(note.ID.String(), note.UserID.String()).
			WillReturnRows(noteRow(note))

		repo := NewNoteRepository(mock)
		got, err := repo.GetByOwner(context.Background(), note.ID, note.UserID)
		require.NoError(t, err)
		assert.Equal(t, note.ID, got.ID)
		assert.Equal(t, note.Title, got.Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("foreign owner reads as absent", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		note := newTestNote(t)
		stranger := ulid.Make()
		// The combined id+owner key matches nothing for a stranger.
		mock.ExpectQuery(`SELECT (.+) FROM notes`).
			WithArgs(note.ID.String(), stranger.String()).
			WillReturnError(pgx.ErrNoRows)

		repo := NewNoteRepository(mock)
		_, err = repo.GetByOwner(context.Background(), note.ID, stranger)
		require.ErrorIs(t, err, notes.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNoteRepository_UpdateByOwner(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	t.Run("applies patch and returns updated row", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		note := newTestNote(t)
		patch := notes.Patch{Title: strPtr("Renamed")}

		updated := *note
		updated.Title = "Renamed"
		mock.ExpectQuery(`UPDATE notes`).
			WithArgs(note.ID.String(), note.UserID.String(), patch.Title, patch.Content).
			WillReturnRows(noteRow(&updated))

		repo := NewNoteRepository(mock)
		got, err := repo.UpdateByOwner(context.Background(), note.ID, note.UserID, patch)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Title)
		assert.Equal(t, note.Content, got.Content)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no match maps to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		note := newTestNote(t)
		mock.ExpectQuery(`UPDATE notes`).
			WithArgs(note.ID.String(), note.UserID.String(), (*string)(nil), (*string)(nil)).
			WillReturnError(pgx.ErrNoRows)

		repo := NewNoteRepository(mock)
		_, err = repo.UpdateByOwner(context.Background(), note.ID, note.UserID, notes.Patch{})
		require.ErrorIs(t, err, notes.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNoteRepository_DeleteByOwner(t *testing.T) {
	t.Run("successful delete", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		note := newTestNote(t)
		mock.ExpectExec(`DELETE FROM notes`).
			WithArgs(note.ID.String(), note.UserID.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := NewNoteRepository(mock)
		require.NoError(t, repo.DeleteByOwner(context.Background(), note.ID, note.UserID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no match maps to ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		note := newTestNote(t)
		mock.ExpectExec(`DELETE FROM notes`).
			WithArgs(note.ID.String(), note.UserID.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewNoteRepository(mock)
		require.ErrorIs(t, repo.DeleteByOwner(context.Background(), note.ID, note.UserID), notes.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		note := newTestNote(t)
		mock.ExpectExec(`DELETE FROM notes`).
			WithArgs(note.ID.String(), note.UserID.String()).
			WillReturnError(errors.New("connection refused"))

		repo := NewNoteRepository(mock)
		err = repo.DeleteByOwner(context.Background(), note.ID, note.UserID)
		require.Error(t, err)
		assert.NotErrorIs(t, err, notes.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
