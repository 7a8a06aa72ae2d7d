package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"cryptolab/internal/auth"
	"cryptolab/internal/bitstr"
	"cryptolab/internal/models"
	"cryptolab/internal/spn"
	"cryptolab/internal/store"
)

// SPNStore persists each learner's SPN setup.
type SPNStore interface {
	SaveSPNSetting(ctx context.Context, st *models.SPNSetting) error
	LoadSPNSetting(ctx context.Context, learnerID string) (*models.SPNSetting, error)
}

// engineFor returns the learner's engine, restoring the saved setting the
// first time the engine is used.
func engineFor(ctx context.Context, reg *spn.Registry, st SPNStore, lg *zap.SugaredLogger) *spn.Engine {
	uid := auth.Subject(ctx)
	e := reg.Engine(uid)
	// other requests wait on this load, so it must outlive ours
	loadCtx := context.WithoutCancel(ctx)
	err := e.Restore(func() (*spn.Config, error) {
		saved, err := st.LoadSPNSetting(loadCtx, uid)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		key, err := bitstr.Parse(saved.Key)
		if err != nil {
			lg.Warnw("saved spn setting rejected", "learner_id", uid, "error", err)
			return nil, nil
		}
		cfg, err := spn.NewConfig(saved.Rounds, saved.SBoxHex, key)
		if err != nil {
			lg.Warnw("saved spn setting rejected", "learner_id", uid, "error", err)
			return nil, nil
		}
		return cfg, nil
	})
	if err != nil {
		lg.Warnw("load spn setting failed", "learner_id", uid, "error", err)
	}
	return e
}

type spnSetupParams struct {
	Rounds int              `json:"rounds"`
	SBox   string           `json:"sbox"`
	Key    bitstr.BitString `json:"key"`
}

// POST /v1/spn/setup
func SPNSetup(reg *spn.Registry, st SPNStore, rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p spnSetupParams
		if !decode(w, r, &p) {
			return
		}
		e := engineFor(r.Context(), reg, st, lg)
		cfg, err := spn.NewConfig(p.Rounds, p.SBox, p.Key)
		if err != nil {
			finish(w, r, rec, lg, "spn", "setup", p, nil, nil, err)
			return
		}
		uid := auth.Subject(r.Context())
		err = e.Commit(cfg, func(cfg *spn.Config) error {
			return st.SaveSPNSetting(r.Context(), &models.SPNSetting{
				LearnerID: uid,
				Rounds:    cfg.Rounds,
				SBoxHex:   cfg.SBoxHex(),
				Key:       cfg.Key.String(),
			})
		})
		if err != nil {
			lg.Errorw("save spn setting failed", "learner_id", uid, "error", err)
			http.Error(w, "could not save setting", http.StatusInternalServerError)
			return
		}
		finish(w, r, rec, lg, "spn", "setup", p, map[string]any{"config": cfg}, nil, nil)
	}
}

// GET /v1/spn/config
func SPNConfig(reg *spn.Registry, st SPNStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := engineFor(r.Context(), reg, st, lg).Config()
		if err != nil {
			fail(w, err)
			return
		}
		respondJSON(w, map[string]any{"config": cfg, "sbox_hex": cfg.SBoxHex()})
	}
}

type spnBlockParams struct {
	Block bitstr.BitString `json:"block"`
}

// POST /v1/spn/encrypt
func SPNEncrypt(reg *spn.Registry, st SPNStore, rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p spnBlockParams
		if !decode(w, r, &p) {
			return
		}
		out, tr, err := engineFor(r.Context(), reg, st, lg).Encrypt(p.Block)
		finish(w, r, rec, lg, "spn", "encrypt", p, map[string]any{"ciphertext": out}, tr, err)
	}
}

// POST /v1/spn/decrypt
func SPNDecrypt(reg *spn.Registry, st SPNStore, rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p spnBlockParams
		if !decode(w, r, &p) {
			return
		}
		out, tr, err := engineFor(r.Context(), reg, st, lg).Decrypt(p.Block)
		finish(w, r, rec, lg, "spn", "decrypt", p, map[string]any{"plaintext": out}, tr, err)
	}
}
