// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package notes

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Service provides ownership-guarded note operations. The requesting user
// id comes from a validated session; the service trusts it but nothing else.
type Service struct {
	notes Repository
}

// NewService creates a Service.
func NewService(notes Repository) (*Service, error) {
	if notes == nil {
		return nil, oops.Code("NOTES_SERVICE_INVALID").Errorf("notes repository is required")
	}
	return &Service{notes: notes}, nil
}

// Create stores a new note for the user.
func (s *Service) Create(ctx context.Context, userID ulid.ULID, title, content string) (*Note, error) {
	note, err := NewNote(userID, title, content)
	if err != nil {
		return nil, err
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, oops.Code("NOTE_CREATE_FAILED").
			With("operation", "persist note").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return note, nil
}

// List returns the user's notes, most recently updated first.
func (s *Service) List(ctx context.Context, userID ulid.ULID) ([]*Note, error) {
	list, err := s.notes.ListByOwner(ctx, userID)
	if err != nil {
		return nil, oops.Code("NOTE_LIST_FAILED").
			With("operation", "list notes").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return list, nil
}

// Get retrieves one of the user's notes.
func (s *Service) Get(ctx context.Context, id, userID ulid.ULID) (*Note, error) {
	return s.notes.GetByOwner(ctx, id, userID)
}

// Update applies a patch to one of the user's notes. The ownership check
// and the mutation are a single statement in the repository; there is no
// check-then-act window.
func (s *Service) Update(ctx context.Context, id, userID ulid.ULID, patch Patch) (*Note, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.notes.UpdateByOwner(ctx, id, userID, patch)
}

// Delete removes one of the user's notes.
func (s *Service) Delete(ctx context.Context, id, userID ulid.ULID) error {
	return s.notes.DeleteByOwner(ctx, id, userID)
}
