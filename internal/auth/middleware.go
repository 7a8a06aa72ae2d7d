package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"cryptolab/internal/models"
)

// SessionStore looks up the session row behind a token.
type SessionStore interface {
	Session(ctx context.Context, jti string) (*models.Session, error)
}

func JWTAuth(signer *Signer, sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			raw := strings.TrimPrefix(h, "Bearer ")
			claims, err := signer.Verify(raw)
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if claims.JWTID == "" {
				http.Error(w, "session not found", http.StatusUnauthorized)
				return
			}
			sess, err := sessions.Session(r.Context(), claims.JWTID)
			if err != nil || sess.LearnerID != claims.Subject {
				http.Error(w, "session not found", http.StatusUnauthorized)
				return
			}
			if sess.RevokedAt != nil || time.Now().After(sess.ExpiresAt) {
				http.Error(w, "session expired/revoked", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// Optional attaches the claims of a valid bearer token with a live session
// and otherwise lets the request through without claims.
func Optional(signer *Signer, sessions SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := signer.Verify(strings.TrimPrefix(h, "Bearer "))
			if err != nil || claims.JWTID == "" {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := sessions.Session(r.Context(), claims.JWTID)
			if err != nil || sess.LearnerID != claims.Subject || sess.RevokedAt != nil || time.Now().After(sess.ExpiresAt) {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// Anonymous attaches the anonymous learner to every request. It replaces
// JWTAuth when there is no database to hold sessions.
func Anonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := Claims{Subject: AnonymousLearner, Roles: []string{"Learner"}}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), c)))
	})
}

func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !FromContext(r.Context()).HasRole(role) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
