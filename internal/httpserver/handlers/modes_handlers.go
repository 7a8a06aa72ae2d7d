package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cryptolab/internal/bitstr"
	"cryptolab/internal/cryptoerr"
	"cryptolab/internal/modes"
	"cryptolab/internal/spn"
)

type modeParams struct {
	Primitive string `json:"primitive"`
	Blocks    string `json:"blocks"`
	Key       string `json:"key"`
	IV        string `json:"iv,omitempty"`
	// Rounds and SBox configure the spn primitive.
	Rounds int    `json:"rounds,omitempty"`
	SBox   string `json:"sbox,omitempty"`
}

// POST /v1/modes/{mode}/{direction}
func RunMode(maxBlocks int, rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p modeParams
		if !decode(w, r, &p) {
			return
		}
		op := chi.URLParam(r, "mode") + "-" + chi.URLParam(r, "direction")
		res, err := runMode(r, p, maxBlocks)
		if err != nil {
			finish(w, r, rec, lg, "modes", op, p, nil, nil, err)
			return
		}
		body := map[string]any{"blocks": res.Blocks}
		if res.Counters != nil {
			body["counters"] = res.Counters
		}
		finish(w, r, rec, lg, "modes", op, p, body, res.Trace, nil)
	}
}

func runMode(r *http.Request, p modeParams, maxBlocks int) (modes.Result, error) {
	mode, err := modes.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		return modes.Result{}, err
	}
	var decrypt bool
	switch d := chi.URLParam(r, "direction"); d {
	case "encrypt":
	case "decrypt":
		decrypt = true
	default:
		return modes.Result{}, fmt.Errorf("%w: unknown direction %q", cryptoerr.ErrInvalidInput, d)
	}
	blocks, err := bitstr.ParseBlocks(p.Blocks)
	if err != nil {
		return modes.Result{}, err
	}
	if len(blocks) > maxBlocks {
		return modes.Result{}, fmt.Errorf("%w: at most %d blocks, got %d", cryptoerr.ErrOutOfRange, maxBlocks, len(blocks))
	}
	key, err := bitstr.ParseKey(p.Key)
	if err != nil {
		return modes.Result{}, fmt.Errorf("key: %w", err)
	}
	var iv bitstr.BitString
	if mode.NeedsIV() {
		if iv, err = bitstr.ParseKey(p.IV); err != nil {
			return modes.Result{}, fmt.Errorf("iv: %w", err)
		}
	}
	c, err := primitive(p, key)
	if err != nil {
		return modes.Result{}, err
	}
	return modes.Run(mode, decrypt, c, iv, blocks)
}

func primitive(p modeParams, key bitstr.BitString) (modes.BlockCipher, error) {
	if p.Primitive == "spn" {
		cfg, err := spn.NewConfig(p.Rounds, p.SBox, key)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return modes.NewPrimitive(p.Primitive, key)
}

// GET /v1/catalogue
func Catalogue() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, map[string]any{
			"modes":      []modes.Mode{modes.ECB, modes.CBC, modes.CTR},
			"primitives": modes.Catalogue(),
		})
	}
}
