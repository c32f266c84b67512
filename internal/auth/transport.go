// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quill Contributors

package auth

import (
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SessionCookieName is the cookie carrying the bearer token.
const SessionCookieName = "sessionId"

// CookieAttributes describes how the session cookie is issued.
type CookieAttributes struct {
	Name     string
	Path     string
	MaxAge   int // seconds
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

// DecideCookie computes session cookie attributes. Pure; no I/O.
//
// Cross-site deployments (frontend origin differs from the service origin)
// need SameSite=None, and browsers only honor SameSite=None together with
// Secure, so cross-site forces Secure regardless of environment. Same-origin
// deployments use SameSite=Lax and take Secure from the production flag.
func DecideCookie(production bool, frontendOrigin, serviceOrigin string, maxAge time.Duration) CookieAttributes {
	crossSite := !sameOrigin(frontendOrigin, serviceOrigin)

	attrs := CookieAttributes{
		Name:     SessionCookieName,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   production || crossSite,
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if crossSite {
		attrs.SameSite = http.SameSiteNoneMode
	}
	return attrs
}

// sameOrigin compares two origins by scheme and host (including port).
// Unparseable origins are treated as distinct.
func sameOrigin(a, b string) bool {
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return false
	}
	if ua.Scheme == "" || ub.Scheme == "" {
		return false
	}
	return strings.EqualFold(ua.Scheme, ub.Scheme) && strings.EqualFold(ua.Host, ub.Host)
}
