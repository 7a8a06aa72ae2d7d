package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"cryptolab/internal/auth"
	"cryptolab/internal/models"
	"cryptolab/internal/spn"
)

type AuthStore interface {
	LearnerByEmail(ctx context.Context, email string) (*models.Learner, error)
	LearnerByID(ctx context.Context, id string) (*models.Learner, error)
	CreateSession(ctx context.Context, sess *models.Session) error
	RevokeSession(ctx context.Context, jti string) error
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(st AuthStore, signer *auth.Signer, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if !decode(w, r, &req) {
			return
		}
		l, err := st.LearnerByEmail(r.Context(), strings.ToLower(req.Email))
		if err != nil || !l.IsActive {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if !auth.PasswordMatches(l.PasswordHash, req.Password) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		var roleNames []string
		for _, role := range l.Roles {
			roleNames = append(roleNames, role.Name)
		}
		tok, err := signer.Sign(l.ID, roleNames)
		if err != nil {
			http.Error(w, "token error", http.StatusInternalServerError)
			return
		}
		sess := models.Session{JTI: tok.JTI, LearnerID: l.ID, ExpiresAt: tok.ExpiresAt, CreatedAt: time.Now()}
		if err := st.CreateSession(r.Context(), &sess); err != nil {
			lg.Errorw("create session failed", "learner_id", l.ID, "error", err)
			http.Error(w, "session error", http.StatusInternalServerError)
			return
		}
		lg.Infow("learner logged in", "learner_id", l.ID)
		respondJSON(w, map[string]any{"token": tok.Raw, "expires_at": tok.ExpiresAt})
	}
}

// Logout revokes the session and drops the learner's in-memory SPN engine;
// the saved setting is restored on next use.
func Logout(st AuthStore, reg *spn.Registry, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := auth.FromContext(r.Context())
		if err := st.RevokeSession(r.Context(), c.JWTID); err != nil {
			lg.Warnw("revoke session failed", "jti", c.JWTID, "error", err)
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		reg.Forget(c.Subject)
		w.WriteHeader(http.StatusNoContent)
	}
}

func Me(st AuthStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l, err := st.LearnerByID(r.Context(), auth.Subject(r.Context()))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, map[string]any{
			"id": l.ID, "email": l.Email, "display_name": l.DisplayName, "roles": l.Roles, "is_active": l.IsActive,
		})
	}
}
