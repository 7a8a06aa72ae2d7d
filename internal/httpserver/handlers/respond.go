package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"cryptolab/internal/auth"
	"cryptolab/internal/cryptoerr"
	"cryptolab/internal/models"
	"cryptolab/internal/store"
	"cryptolab/internal/trace"
)

// RunRecorder stores history entries.
type RunRecorder interface {
	RecordRun(ctx context.Context, run *models.Run) error
}

// Discard is used when the service runs without a database.
type Discard struct{}

func (Discard) RecordRun(context.Context, *models.Run) error { return nil }

func (Discard) SaveSPNSetting(context.Context, *models.SPNSetting) error { return nil }

func (Discard) LoadSPNSetting(context.Context, string) (*models.SPNSetting, error) {
	return nil, store.ErrNotFound
}

func respondJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// decode reads the JSON body into v. Field values rejected by their own
// unmarshalling (a malformed bit string, say) are reported like any other
// operation error.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if cryptoerr.Kind(err) != "" {
			fail(w, err)
			return false
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// statusFor maps error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, cryptoerr.ErrUnconfigured):
		return http.StatusConflict
	case errors.Is(err, cryptoerr.ErrOutOfRange),
		errors.Is(err, cryptoerr.ErrNotPrime),
		errors.Is(err, cryptoerr.ErrNoInverse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// fail writes err with its status and a kind field clients can switch on.
func fail(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error(), "kind": cryptoerr.Kind(err)})
}

// record writes a history entry for the calling learner. Failures are
// logged and otherwise ignored.
func record(r *http.Request, rec RunRecorder, lg *zap.SugaredLogger, topic, op string, params, result any, tr trace.Trace, err error) {
	run := models.Run{
		Topic:     topic,
		Operation: op,
		Params:    models.ToJSONB(params),
		Status:    models.StatusOK,
	}
	if uid := auth.Subject(r.Context()); uid != "" {
		run.LearnerID = &uid
	}
	if err != nil {
		run.Status = models.StatusFailed
		run.Result = models.ToJSONB(map[string]string{"error": err.Error(), "kind": cryptoerr.Kind(err)})
	} else {
		run.Result = models.ToJSONB(result)
		run.Trace = models.ToJSONB(tr)
	}
	if rerr := rec.RecordRun(r.Context(), &run); rerr != nil {
		lg.Warnw("record run failed", "topic", topic, "operation", op, "error", rerr)
	}
}

// finish records the run and writes either the error or body plus trace.
func finish(w http.ResponseWriter, r *http.Request, rec RunRecorder, lg *zap.SugaredLogger, topic, op string, params any, body map[string]any, tr trace.Trace, err error) {
	record(r, rec, lg, topic, op, params, body, tr, err)
	if err != nil {
		lg.Debugw("operation rejected", "topic", topic, "operation", op, "error", err)
		fail(w, err)
		return
	}
	if tr == nil {
		tr = trace.Trace{}
	}
	body["trace"] = tr
	respondJSON(w, body)
}
