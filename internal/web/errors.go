// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/quillnotes/quill/internal/auth"
	"github.com/quillnotes/quill/internal/notes"
	"github.com/quillnotes/quill/pkg/errutil"
)

// validationCodes are domain validation failures that translate to 400.
// Dispatch is by tagged code, never by message text.
var validationCodes = map[string]struct{}{
	"AUTH_EMPTY_PASSWORD":   {},
	"AUTH_INVALID_EMAIL":    {},
	"AUTH_INVALID_PASSWORD": {},
	"NOTE_INVALID_TITLE":    {},
	"NOTE_INVALID_OWNER":    {},
}

// statusForError maps an error kind to its HTTP status. The mapping is
// exhaustive over the error kinds the services produce; anything else is
// an internal error.
func statusForError(err error) int {
	switch {
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrNotFound), errors.Is(err, notes.ErrNotFound):
		return http.StatusNotFound
	}

	if oopsErr, ok := oops.AsOops(err); ok {
		if code, ok := oopsErr.Code().(string); ok {
			if _, found := validationCodes[code]; found {
				return http.StatusBadRequest
			}
		}
	}

	return http.StatusInternalServerError
}

// messageForStatus returns the client-facing message for an error.
// Internal errors expose detail only outside production.
func (s *Server) messageForStatus(status int, err error) string {
	switch status {
	case http.StatusConflict:
		return "user already exists"
	case http.StatusUnauthorized:
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return "invalid credentials"
		}
		return "unauthorized"
	case http.StatusNotFound:
		return "not found"
	case http.StatusBadRequest:
		return err.Error()
	default:
		if s.production {
			return "internal server error"
		}
		return err.Error()
	}
}

// respondError translates an error into a JSON response.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		errutil.LogError(s.logger, "request failed", err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": s.messageForStatus(status, err)})
}

// respondBindError reports a request-body or parameter shape failure.
func respondBindError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
