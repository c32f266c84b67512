// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillnotes/quill/internal/auth"
	"github.com/quillnotes/quill/pkg/errutil"
)

type registerRequest struct {
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Name     *string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// handleRegister creates an account and signs the new user in.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := s.auth.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}

	token, _, err := s.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.setSessionCookie(c, token)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// handleLogin verifies credentials and issues a fresh session.
func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if s.metrics != nil {
			s.metrics.LoginFailures.Inc()
		}
		s.respondError(c, err)
		return
	}

	token, _, err := s.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// handleLogout revokes the caller's session. Always succeeds: a missing or
// already-deleted session still yields 200, and the cookie is cleared
// either way.
func (s *Server) handleLogout(c *gin.Context) {
	if token, err := c.Cookie(auth.SessionCookieName); err == nil && token != "" {
		if delErr := s.sessions.Delete(c.Request.Context(), token); delErr != nil {
			errutil.LogWarn(s.logger, "failed to delete session on logout", delErr)
		}
	}

	s.clearSessionCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// handleMe returns the authenticated user.
func (s *Server) handleMe(c *gin.Context) {
	principal, ok := CurrentPrincipal(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": principal.User})
}

// setSessionCookie writes the session cookie with the deployment's
// transport attributes.
func (s *Server) setSessionCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    token,
		Path:     s.cookie.Path,
		MaxAge:   s.cookie.MaxAge,
		Secure:   s.cookie.Secure,
		HttpOnly: s.cookie.HTTPOnly,
		SameSite: s.cookie.SameSite,
	})
}

// clearSessionCookie expires the session cookie. Attributes other than
// MaxAge must match the issuing cookie or browsers keep the original.
func (s *Server) clearSessionCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.cookie.Name,
		Value:    "",
		Path:     s.cookie.Path,
		MaxAge:   -1,
		Secure:   s.cookie.Secure,
		HttpOnly: s.cookie.HTTPOnly,
		SameSite: s.cookie.SameSite,
	})
}
