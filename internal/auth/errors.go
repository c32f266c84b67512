// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package auth

import "errors"

// Error kinds surfaced to the transport layer. Each maps to exactly one
// HTTP status; callers branch with errors.Is, never on message text.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when registering an already-registered email.
	ErrEmailTaken = errors.New("user already exists")

	// ErrInvalidCredentials is returned on login failure. The same value is
	// used for unknown email and wrong password so the two are
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUnauthenticated is returned when a session is missing, unknown,
	// or expired.
	ErrUnauthenticated = errors.New("unauthenticated")
)
