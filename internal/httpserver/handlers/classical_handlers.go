package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"cryptolab/internal/bitstr"
	"cryptolab/internal/classical"
	"cryptolab/internal/cryptoerr"
)

type caesarParams struct {
	Text      string `json:"text"`
	Shift     int    `json:"shift"`
	Direction string `json:"direction"`
}

// POST /v1/classical/caesar
func Caesar(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p caesarParams
		if !decode(w, r, &p) {
			return
		}
		dir, ok := classical.ParseDirection(p.Direction)
		if !ok {
			err := fmt.Errorf("%w: unknown direction %q", cryptoerr.ErrInvalidInput, p.Direction)
			finish(w, r, rec, lg, "classical", "caesar", p, nil, nil, err)
			return
		}
		out, tr := classical.Caesar(p.Text, p.Shift, dir)
		finish(w, r, rec, lg, "classical", "caesar", p, map[string]any{"text": out}, tr, nil)
	}
}

type textParams struct {
	Text string `json:"text"`
}

// POST /v1/classical/caesar/bruteforce
func CaesarBruteForce(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p textParams
		if !decode(w, r, &p) {
			return
		}
		finish(w, r, rec, lg, "classical", "caesar-bruteforce", p, map[string]any{"candidates": classical.BruteForceCaesar(p.Text)}, nil, nil)
	}
}

// POST /v1/classical/frequency
func Frequency(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p textParams
		if !decode(w, r, &p) {
			return
		}
		finish(w, r, rec, lg, "classical", "frequency", p, map[string]any{"frequencies": classical.FrequencyAnalysis(p.Text)}, nil, nil)
	}
}

type substitutionParams struct {
	Text  string `json:"text"`
	Rules string `json:"rules"`
}

// POST /v1/classical/substitution
func Substitution(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p substitutionParams
		if !decode(w, r, &p) {
			return
		}
		rules := classical.ParseSubstitutionRules(p.Rules)
		out := classical.ApplySubstitution(p.Text, rules)
		finish(w, r, rec, lg, "classical", "substitution", p, map[string]any{"text": out, "rules": rules.Pairs()}, nil, nil)
	}
}

type otpKeyParams struct {
	Plaintext bitstr.BitString `json:"plaintext"`
}

// POST /v1/classical/otp/key
func OTPKey(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p otpKeyParams
		if !decode(w, r, &p) {
			return
		}
		key, err := classical.OTPKey(p.Plaintext)
		finish(w, r, rec, lg, "classical", "otp-key", p, map[string]any{"key": key}, nil, err)
	}
}

type otpParams struct {
	Text bitstr.BitString `json:"text"`
	Key  bitstr.BitString `json:"key"`
}

// POST /v1/classical/otp/apply
func OTPApply(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p otpParams
		if !decode(w, r, &p) {
			return
		}
		if err := required("text", p.Text); err != nil {
			finish(w, r, rec, lg, "classical", "otp-apply", p, nil, nil, err)
			return
		}
		out, tr, err := classical.OTPApply(p.Text, p.Key)
		finish(w, r, rec, lg, "classical", "otp-apply", p, map[string]any{"result": out}, tr, err)
	}
}

type possibilisticParams struct {
	System     int               `json:"system"`
	Custom     *classical.System `json:"custom,omitempty"`
	Plaintext  string            `json:"plaintext,omitempty"`
	Ciphertext string            `json:"ciphertext,omitempty"`
}

// POST /v1/classical/possibilistic
func Possibilistic(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p possibilisticParams
		if !decode(w, r, &p) {
			return
		}
		sys, err := pickSystem(p)
		if err != nil {
			finish(w, r, rec, lg, "classical", "possibilistic", p, nil, nil, err)
			return
		}
		body := map[string]any{"system": sys, "assessment": sys.CheckPossibilistic()}
		if p.Plaintext != "" && p.Ciphertext != "" {
			body["keys"] = sys.KeysFor(p.Plaintext, p.Ciphertext)
		}
		finish(w, r, rec, lg, "classical", "possibilistic", p, body, nil, nil)
	}
}

func pickSystem(p possibilisticParams) (classical.System, error) {
	if p.Custom != nil {
		return *p.Custom, p.Custom.Validate()
	}
	sys, ok := classical.ExampleSystems[p.System]
	if !ok {
		return classical.System{}, fmt.Errorf("%w: unknown example system %d", cryptoerr.ErrInvalidInput, p.System)
	}
	return sys, nil
}
