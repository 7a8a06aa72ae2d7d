package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"cryptolab/internal/cryptoerr"
	"cryptolab/internal/rsa"
)

type rsaKeyParams struct {
	P int64 `json:"p"`
	Q int64 `json:"q"`
}

// POST /v1/rsa/keys. p and q are bounded by maxPrime.
func RSAKeys(maxPrime int64, rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p rsaKeyParams
		if !decode(w, r, &p) {
			return
		}
		if p.P > maxPrime || p.Q > maxPrime {
			err := fmt.Errorf("%w: p and q must not exceed %d", cryptoerr.ErrOutOfRange, maxPrime)
			finish(w, r, rec, lg, "rsa", "keys", p, nil, nil, err)
			return
		}
		k, tr, err := rsa.GenerateKeys(p.P, p.Q)
		finish(w, r, rec, lg, "rsa", "keys", p, map[string]any{"keys": k}, tr, err)
	}
}

type rsaEncryptParams struct {
	M int64 `json:"m"`
	N int64 `json:"n"`
	E int64 `json:"e"`
}

// POST /v1/rsa/encrypt
func RSAEncrypt(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p rsaEncryptParams
		if !decode(w, r, &p) {
			return
		}
		c, tr, err := rsa.Encrypt(p.M, p.N, p.E)
		finish(w, r, rec, lg, "rsa", "encrypt", p, map[string]any{"ciphertext": c}, tr, err)
	}
}

type rsaDecryptParams struct {
	C int64 `json:"c"`
	N int64 `json:"n"`
	D int64 `json:"d"`
}

// POST /v1/rsa/decrypt
func RSADecrypt(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p rsaDecryptParams
		if !decode(w, r, &p) {
			return
		}
		m, tr, err := rsa.Decrypt(p.C, p.N, p.D)
		finish(w, r, rec, lg, "rsa", "decrypt", p, map[string]any{"message": m}, tr, err)
	}
}
