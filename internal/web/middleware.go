// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quillnotes/quill/internal/auth"
	"github.com/quillnotes/quill/internal/observability"
	"github.com/quillnotes/quill/pkg/errutil"
)

// principalKey stores the authenticated principal in the gin context.
const principalKey = "quill.principal"

// Principal is the authenticated caller of a request, resolved from the
// session cookie by RequireSession.
type Principal struct {
	User    *auth.User
	Session *auth.Session
}

// RequireSession rejects requests without a valid session cookie and
// attaches the resolved principal for downstream handlers. Validation is
// re-checked against the store on every request.
func (s *Server) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.SessionCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, session, err := s.sessions.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			errutil.LogError(s.logger, "session validation failed", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(principalKey, Principal{User: user, Session: session})
		c.Next()
	}
}

// CurrentPrincipal returns the principal set by RequireSession.
func CurrentPrincipal(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// requestMetrics records one counter increment per handled request, labeled
// by the route pattern rather than the raw path to bound cardinality.
func requestMetrics(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if metrics == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(c.Request.Method, route, c.Writer.Status())
	}
}

// securityHeaders sets baseline response headers on every request.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	}
}
