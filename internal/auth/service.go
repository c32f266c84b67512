// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/samber/oops"

	"github.com/quillnotes/quill/pkg/errutil"
)

// Service provides registration and login.
type Service struct {
	users  UserRepository
	hasher PasswordHasher
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(users UserRepository, hasher PasswordHasher) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("users repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("password hasher is required")
	}
	return &Service{
		users:  users,
		hasher: hasher,
		logger: slog.Default(),
	}, nil
}

// dummyPasswordHash is verified when the email is unknown so that login
// response time does not reveal whether an account exists. It is a fake
// hash that can never match any password.
//
//nolint:gosec // G101: intentionally fake hash for timing uniformity, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates a new user account. The email is matched byte-exact
// against existing accounts; a duplicate fails with ErrEmailTaken before
// any hashing happens, so a doomed request never pays the argon2 cost.
// Registration does not create a session; that composition belongs to
// the caller.
func (s *Service) Register(ctx context.Context, email, password string, name *string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, oops.Code("AUTH_EMAIL_TAKEN").
			With("email", email).
			Wrap(ErrEmailTaken)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "check existing email").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(email, hash, name)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "construct user").
			Wrap(err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Two concurrent registrations can both pass the existence check;
		// the unique constraint decides the race.
		if errors.Is(err, ErrEmailTaken) {
			return nil, oops.Code("AUTH_EMAIL_TAKEN").
				With("email", email).
				Wrap(ErrEmailTaken)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "persist user").
			Wrap(err)
	}

	return user, nil
}

// Login verifies credentials and returns the user. Unknown email and wrong
// password produce the identical ErrInvalidCredentials; a dummy hash is
// verified when the account does not exist to keep timing uniform.
func (s *Service) Login(ctx context.Context, email, password string) (*User, error) {
	user, lookupErr := s.users.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	userExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get user by email").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !userExists {
			// Dummy hash failed to parse; fall through to the uniform error.
			return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		if userExists {
			user.RecordFailure()
			if updErr := s.users.Update(ctx, user); updErr != nil {
				errutil.LogWarn(s.logger, "failed to record login failure", updErr)
			}
		}
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	// Checked after verification so lockout does not change response timing
	// for wrong passwords.
	if user.IsLocked() {
		return nil, oops.Code("AUTH_ACCOUNT_LOCKED").
			With("locked_until", user.LockedUntil).
			Wrap(ErrInvalidCredentials)
	}

	user.RecordSuccess()
	if updErr := s.users.Update(ctx, user); updErr != nil {
		// Login succeeds regardless; the counter reset is best effort.
		errutil.LogWarn(s.logger, "failed to reset login failures", updErr)
	}

	return user, nil
}
