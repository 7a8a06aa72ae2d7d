package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"cryptolab/internal/bitstr"
	"cryptolab/internal/cryptoerr"
	"cryptolab/internal/trace"
)

// maxRandomBits bounds /v1/binary/random.
const maxRandomBits = 4096

type xorParams struct {
	A bitstr.BitString `json:"a"`
	B bitstr.BitString `json:"b"`
}

// POST /v1/binary/xor
func XOR(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p xorParams
		if !decode(w, r, &p) {
			return
		}
		out, tr, err := xorSteps(p.A, p.B)
		finish(w, r, rec, lg, "binary", "xor", p, map[string]any{"result": out}, tr, err)
	}
}

func xorSteps(a, b bitstr.BitString) (bitstr.BitString, trace.Trace, error) {
	if err := required("a", a); err != nil {
		return nil, nil, err
	}
	if err := required("b", b); err != nil {
		return nil, nil, err
	}
	return bitstr.XORSteps(a, b)
}

func required(name string, b bitstr.BitString) error {
	if b.Len() == 0 {
		return fmt.Errorf("%w: %s is required", cryptoerr.ErrInvalidInput, name)
	}
	return nil
}

type bitsParams struct {
	Bits bitstr.BitString `json:"bits"`
}

// POST /v1/binary/increment
func Increment(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p bitsParams
		if !decode(w, r, &p) {
			return
		}
		if err := required("bits", p.Bits); err != nil {
			finish(w, r, rec, lg, "binary", "increment", p, nil, nil, err)
			return
		}
		out := p.Bits.Increment()
		var tr trace.Trace
		tr.Add("increment", out, "in", p.Bits)
		finish(w, r, rec, lg, "binary", "increment", p, map[string]any{"result": out}, tr, nil)
	}
}

type hexParams struct {
	Hex string `json:"hex"`
}

// POST /v1/binary/hex-to-binary
func HexToBinary(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p hexParams
		if !decode(w, r, &p) {
			return
		}
		out, err := bitstr.FromHex(p.Hex)
		finish(w, r, rec, lg, "binary", "hex-to-binary", p, map[string]any{"bits": out}, nil, err)
	}
}

// POST /v1/binary/binary-to-hex
func BinaryToHex(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p bitsParams
		if !decode(w, r, &p) {
			return
		}
		err := required("bits", p.Bits)
		finish(w, r, rec, lg, "binary", "binary-to-hex", p, map[string]any{"hex": p.Bits.Hex()}, nil, err)
	}
}

type randomParams struct {
	Length int `json:"length"`
}

// POST /v1/binary/random
func RandomBits(rec RunRecorder, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p randomParams
		if !decode(w, r, &p) {
			return
		}
		if p.Length < 1 || p.Length > maxRandomBits {
			err := fmt.Errorf("%w: length must be in [1, %d]", cryptoerr.ErrOutOfRange, maxRandomBits)
			finish(w, r, rec, lg, "binary", "random", p, nil, nil, err)
			return
		}
		finish(w, r, rec, lg, "binary", "random", p, map[string]any{"bits": bitstr.Random(p.Length)}, nil, nil)
	}
}
