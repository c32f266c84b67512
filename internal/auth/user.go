// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Password policy.
const MinPasswordLength = 8

// Login failure lockout policy.
const (
	// LockoutThreshold is the number of consecutive failures that locks an account.
	LockoutThreshold = 7

	// LockoutDuration is how long a locked account stays locked.
	LockoutDuration = 15 * time.Minute
)

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID             ulid.ULID  `json:"id"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Name           *string    `json:"name,omitempty"`
	FailedAttempts int        `json:"-"`
	LockedUntil    *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewUser creates a validated User. Email is stored byte-exact: lookups are
// case-sensitive, so Test@x.com and test@x.com are distinct accounts.
func NewUser(email, passwordHash string, name *string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_USER").Errorf("password hash cannot be empty")
	}

	now := time.Now().UTC()
	return &User{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// IsLocked returns true if the account is currently locked out.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && u.LockedUntil.After(time.Now())
}

// RecordFailure increments the failure counter and sets the lockout
// timestamp once the threshold is reached.
func (u *User) RecordFailure() {
	u.FailedAttempts++
	if u.FailedAttempts >= LockoutThreshold {
		lockout := time.Now().Add(LockoutDuration)
		u.LockedUntil = &lockout
	}
	u.UpdatedAt = time.Now()
}

// RecordSuccess resets the failure counter and lockout.
func (u *User) RecordSuccess() {
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = time.Now()
}

// ValidateEmail applies a minimal shape check. No normalization is applied;
// stricter format validation belongs to the request-binding layer.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("email", email).
			Errorf("email must contain a local part and a domain")
	}
	return nil
}

// ValidatePassword enforces the registration password policy.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) < MinPasswordLength {
		return oops.Code("AUTH_INVALID_PASSWORD").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// UserRepository manages user persistence.
type UserRepository interface {
	// Create stores a new user. Returns ErrEmailTaken (wrapped) when the
	// email is already registered.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by id. Returns ErrNotFound (wrapped) when absent.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by exact email match.
	// Returns ErrNotFound (wrapped) when absent.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update persists changes to an existing user.
	Update(ctx context.Context, user *User) error
}
