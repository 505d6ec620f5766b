// Package middleware provides HTTP middleware for the resume builder service.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// profileIDKey is the context key for storing the profile ID.
const profileIDKey ContextKey = "profileID"

// ProfileCookie names the cookie that carries the profile ID.
const ProfileCookie = "resume_profile"

// ProfileHeader lets API clients choose a profile without cookies.
const ProfileHeader = "X-Profile-ID"

// profileMaxAge is how long the browser keeps the profile cookie.
const profileMaxAge = 365 * 24 * time.Hour

// ProfileMiddleware resolves the anonymous profile of a request. The profile
// comes from the X-Profile-ID header, then the profile cookie; requests with
// neither get a new profile and a cookie for it.
func ProfileMiddleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := profileFromRequest(r)
			if !ok {
				id = uuid.New()
				http.SetCookie(w, &http.Cookie{
					Name:     ProfileCookie,
					Value:    id.String(),
					Path:     "/",
					MaxAge:   int(profileMaxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), profileIDKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func profileFromRequest(r *http.Request) (uuid.UUID, bool) {
	if h := r.Header.Get(ProfileHeader); h != "" {
		if id, err := uuid.Parse(h); err == nil {
			return id, true
		}
	}
	if c, err := r.Cookie(ProfileCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

// GetProfileID extracts the profile ID from the request context.
func GetProfileID(r *http.Request) (uuid.UUID, error) {
	id, ok := r.Context().Value(profileIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, fmt.Errorf("profile ID not found in request context")
	}
	return id, nil
}

// ProfileIDKey returns the context key for profile ID (for testing purposes).
func ProfileIDKey() ContextKey {
	return profileIDKey
}
