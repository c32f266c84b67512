// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

// Package auth implements credential verification and session management
// for the notes service.
//
// # Domain Types
//
// User and Session should be created through their constructors (NewUser,
// NewSession); direct struct initialization bypasses validation.
//
// # Services
//
// Service handles registration and login. SessionManager issues, validates,
// revokes, and sweeps sessions. Sweeper runs SweepExpired on a schedule.
// DecideCookie computes transport attributes for the session cookie.
//
// The bearer token handed to clients is never stored; repositories persist
// only its SHA-256 hash.
package auth
