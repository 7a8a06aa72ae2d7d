package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"cryptolab/internal/cryptoerr"
	"cryptolab/internal/numtheory"
)

type pairParams struct {
	A int64 `json:"a"`
	B int64 `json:"b"`
}

// POST /v1/numtheory/gcd
func Gcd(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p pairParams
		if !decode(w, r, &p) {
			return
		}
		g, tr, err := numtheory.GcdSteps(p.A, p.B)
		finish(w, r, rec, lg, "numtheory", "gcd", p, map[string]any{"gcd": g}, tr, err)
	}
}

// POST /v1/numtheory/egcd
func ExtendedGcd(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p pairParams
		if !decode(w, r, &p) {
			return
		}
		bz, rows, tr, err := numtheory.ExtendedGcdTable(p.A, p.B)
		finish(w, r, rec, lg, "numtheory", "egcd", p, map[string]any{"gcd": bz.G, "s": bz.S, "t": bz.T, "rows": rows}, tr, err)
	}
}

type modInvParams struct {
	A int64 `json:"a"`
	M int64 `json:"m"`
}

// POST /v1/numtheory/modinv
func ModInverse(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p modInvParams
		if !decode(w, r, &p) {
			return
		}
		x, tr, err := numtheory.ModInverseSteps(p.A, p.M)
		finish(w, r, rec, lg, "numtheory", "modinv", p, map[string]any{"inverse": x}, tr, err)
	}
}

type modPowParams struct {
	Base     int64 `json:"base"`
	Exponent int64 `json:"exponent"`
	Modulus  int64 `json:"modulus"`
}

// POST /v1/numtheory/modpow
func ModPow(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p modPowParams
		if !decode(w, r, &p) {
			return
		}
		v, tr, err := numtheory.ModPow(p.Base, p.Exponent, p.Modulus)
		finish(w, r, rec, lg, "numtheory", "modpow", p, map[string]any{"result": v}, tr, err)
	}
}

type modArithParams struct {
	Op string `json:"op"`
	A  int64  `json:"a"`
	B  int64  `json:"b"`
	N  int64  `json:"n"`
}

// POST /v1/numtheory/modarith
func ModArith(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p modArithParams
		if !decode(w, r, &p) {
			return
		}
		v, tr, err := numtheory.ModArith(p.Op, p.A, p.B, p.N)
		finish(w, r, rec, lg, "numtheory", "modarith", p, map[string]any{"result": v}, tr, err)
	}
}

type numberParams struct {
	N int64 `json:"n"`
}

// trialBound rejects n above maxN; φ and primality use trial division up to √n.
func trialBound(n, maxN int64) error {
	if n > maxN {
		return fmt.Errorf("%w: n must not exceed %d", cryptoerr.ErrOutOfRange, maxN)
	}
	return nil
}

// POST /v1/numtheory/phi. n is bounded by maxN.
func EulerPhi(maxN int64, rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p numberParams
		if !decode(w, r, &p) {
			return
		}
		if err := trialBound(p.N, maxN); err != nil {
			finish(w, r, rec, lg, "numtheory", "phi", p, nil, nil, err)
			return
		}
		v, err := numtheory.EulerPhi(p.N)
		finish(w, r, rec, lg, "numtheory", "phi", p, map[string]any{"phi": v}, nil, err)
	}
}

// POST /v1/numtheory/isprime. n is bounded by maxN.
func IsPrime(maxN int64, rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p numberParams
		if !decode(w, r, &p) {
			return
		}
		if err := trialBound(p.N, maxN); err != nil {
			finish(w, r, rec, lg, "numtheory", "isprime", p, nil, nil, err)
			return
		}
		finish(w, r, rec, lg, "numtheory", "isprime", p, map[string]any{"prime": numtheory.IsPrime(p.N)}, nil, nil)
	}
}
