package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"cryptolab/internal/auth"
	"cryptolab/internal/models"
)

type HistoryStore interface {
	ListRuns(ctx context.Context, learnerID, topic string) ([]models.Run, error)
	ListRecentRuns(ctx context.Context, topic string) ([]models.Run, error)
}

// GET /v1/history?topic=rsa
func History(st HistoryStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := st.ListRuns(r.Context(), auth.Subject(r.Context()), r.URL.Query().Get("topic"))
		respondRuns(w, lg, runs, err)
	}
}

// GET /v1/instructor/runs?topic=rsa lists recent runs of every learner.
func RecentRuns(st HistoryStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := st.ListRecentRuns(r.Context(), r.URL.Query().Get("topic"))
		respondRuns(w, lg, runs, err)
	}
}

func respondRuns(w http.ResponseWriter, lg *zap.SugaredLogger, runs []models.Run, err error) {
	if err != nil {
		lg.Errorw("list runs failed", "error", err)
		http.Error(w, "could not load history", http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]any{"data": runs, "count": len(runs)})
}
