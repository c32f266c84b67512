// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

// Package notes implements the note domain with strict per-user ownership.
//
// Every read, update, and delete is scoped by note id AND owner id in a
// single atomic statement. A note owned by another user is therefore
// indistinguishable from one that does not exist.
package notes

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MaxTitleLength bounds note titles.
const MaxTitleLength = 200

// ErrNotFound is returned when a note does not exist or belongs to another
// user. The two cases share this single value so no ownership information
// leaks.
var ErrNotFound = errors.New("note not found")

// Note is a private text record owned by exactly one user.
type Note struct {
	ID        ulid.ULID `json:"id"`
	UserID    ulid.ULID `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewNote creates a validated Note.
func NewNote(userID ulid.ULID, title, content string) (*Note, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("NOTE_INVALID_OWNER").Errorf("owner ID cannot be zero")
	}
	if title == "" {
		return nil, oops.Code("NOTE_INVALID_TITLE").Errorf("title cannot be empty")
	}
	if len(title) > MaxTitleLength {
		return nil, oops.Code("NOTE_INVALID_TITLE").
			With("max", MaxTitleLength).
			Errorf("title must be at most %d characters", MaxTitleLength)
	}

	now := time.Now().UTC()
	return &Note{
		ID:        ulid.Make(),
		UserID:    userID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Patch carries a partial note update. Nil fields are left unchanged.
type Patch struct {
	Title   *string
	Content *string
}

// Validate checks patch fields that are present.
func (p Patch) Validate() error {
	if p.Title != nil {
		if *p.Title == "" {
			return oops.Code("NOTE_INVALID_TITLE").Errorf("title cannot be empty")
		}
		if len(*p.Title) > MaxTitleLength {
			return oops.Code("NOTE_INVALID_TITLE").
				With("max", MaxTitleLength).
				Errorf("title must be at most %d characters", MaxTitleLength)
		}
	}
	return nil
}

// Repository manages note persistence. Get, Update, and Delete are keyed by
// both note id and owner id in one statement; implementations must never
// split the ownership check from the action.
type Repository interface {
	// Create stores a new note.
	Create(ctx context.Context, note *Note) error

	// ListByOwner returns the owner's notes, most recently updated first.
	ListByOwner(ctx context.Context, userID ulid.ULID) ([]*Note, error)

	// GetByOwner retrieves a note scoped by id and owner.
	// Returns ErrNotFound (wrapped) when no row matches both.
	GetByOwner(ctx context.Context, id, userID ulid.ULID) (*Note, error)

	// UpdateByOwner applies a patch scoped by id and owner and returns the
	// updated note. Returns ErrNotFound (wrapped) when no row matches both.
	UpdateByOwner(ctx context.Context, id, userID ulid.ULID, patch Patch) (*Note, error)

	// DeleteByOwner removes a note scoped by id and owner.
	// Returns ErrNotFound (wrapped) when no row matches both.
	DeleteByOwner(ctx context.Context, id, userID ulid.ULID) error
}
