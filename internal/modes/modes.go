package modes

import (
	"fmt"
	"strings"

	"cryptolab/internal/bitstr"
	"cryptolab/internal/cryptoerr"
	"cryptolab/internal/trace"
)

// Mode names a confidentiality mode.
type Mode string

const (
	ECB Mode = "ecb"
	CBC Mode = "cbc"
	CTR Mode = "ctr"
)

// ParseMode accepts "ecb", "cbc" or "ctr" in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ECB, CBC, CTR:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", cryptoerr.ErrInvalidInput, s)
}

// NeedsIV reports whether the mode takes an IV or initial counter.
func (m Mode) NeedsIV() bool { return m != ECB }

// Result is the output of one mode run.
type Result struct {
	Blocks   []bitstr.BitString `json:"blocks"`
	Counters []bitstr.BitString `json:"counters,omitempty"`
	Trace    trace.Trace        `json:"trace"`
}

// Run dispatches to the encryption or decryption function of mode. iv is
// ignored for ECB; for CTR it is the initial counter.
func Run(mode Mode, decrypt bool, c BlockCipher, iv bitstr.BitString, blocks []bitstr.BitString) (Result, error) {
	switch mode {
	case ECB:
		if decrypt {
			return DecryptECB(c, blocks)
		}
		return EncryptECB(c, blocks)
	case CBC:
		if decrypt {
			return DecryptCBC(c, iv, blocks)
		}
		return EncryptCBC(c, iv, blocks)
	case CTR:
		return CounterMode(c, iv, blocks)
	}
	return Result{}, fmt.Errorf("%w: unknown mode %q", cryptoerr.ErrInvalidInput, mode)
}

// EncryptECB encrypts every block on its own: c[i] = E(p[i]).
func EncryptECB(c BlockCipher, blocks []bitstr.BitString) (Result, error) {
	return ecb(c, blocks, "encrypt", c.EncryptBlock)
}

// DecryptECB inverts EncryptECB.
func DecryptECB(c BlockCipher, blocks []bitstr.BitString) (Result, error) {
	return ecb(c, blocks, "decrypt", c.DecryptBlock)
}

func ecb(c BlockCipher, blocks []bitstr.BitString, kind string, fn func(bitstr.BitString) (bitstr.BitString, error)) (Result, error) {
	if len(blocks) == 0 {
		return Result{}, fmt.Errorf("%w: no blocks given", cryptoerr.ErrInvalidInput)
	}
	var res Result
	for i, b := range blocks {
		if err := checkSize(c, b, i); err != nil {
			return Result{}, err
		}
		out, err := fn(b)
		if err != nil {
			return Result{}, fmt.Errorf("block %d: %w", i, err)
		}
		res.Trace.Add(kind, out, "block", i+1, "in", b)
		res.Blocks = append(res.Blocks, out)
	}
	return res, nil
}

// EncryptCBC chains each plaintext block with the previous ciphertext block:
// c[0] = E(p[0] ⊕ iv), c[i] = E(p[i] ⊕ c[i-1]).
func EncryptCBC(c BlockCipher, iv bitstr.BitString, blocks []bitstr.BitString) (Result, error) {
	if err := checkChain(c, iv, blocks); err != nil {
		return Result{}, err
	}
	var res Result
	prev := iv
	for i, p := range blocks {
		x, err := bitstr.XOR(p, prev)
		if err != nil {
			return Result{}, err
		}
		res.Trace.Add("chain", x, "block", i+1, "in", p, "prev", prev)
		out, err := c.EncryptBlock(x)
		if err != nil {
			return Result{}, fmt.Errorf("block %d: %w", i, err)
		}
		res.Trace.Add("encrypt", out, "block", i+1, "in", x)
		res.Blocks = append(res.Blocks, out)
		prev = out
	}
	return res, nil
}

// DecryptCBC inverts EncryptCBC: p[i] = D(c[i]) ⊕ c[i-1], with c[-1] = iv.
func DecryptCBC(c BlockCipher, iv bitstr.BitString, blocks []bitstr.BitString) (Result, error) {
	if err := checkChain(c, iv, blocks); err != nil {
		return Result{}, err
	}
	var res Result
	prev := iv
	for i, ct := range blocks {
		x, err := c.DecryptBlock(ct)
		if err != nil {
			return Result{}, fmt.Errorf("block %d: %w", i, err)
		}
		res.Trace.Add("decrypt", x, "block", i+1, "in", ct)
		p, err := bitstr.XOR(x, prev)
		if err != nil {
			return Result{}, err
		}
		res.Trace.Add("chain", p, "block", i+1, "in", x, "prev", prev)
		res.Blocks = append(res.Blocks, p)
		prev = ct
	}
	return res, nil
}

// CounterMode XORs each block with E(counter), incrementing the counter
// modulo 2^n after every block. Encryption and decryption are the same
// operation. The counters used are returned with the result.
func CounterMode(c BlockCipher, counter bitstr.BitString, blocks []bitstr.BitString) (Result, error) {
	if err := checkChain(c, counter, blocks); err != nil {
		return Result{}, err
	}
	var res Result
	ctr := counter.Clone()
	for i, b := range blocks {
		res.Counters = append(res.Counters, ctr)
		res.Trace.Add("counter", ctr, "block", i+1)
		ks, err := c.EncryptBlock(ctr)
		if err != nil {
			return Result{}, fmt.Errorf("block %d: %w", i, err)
		}
		res.Trace.Add("keystream", ks, "block", i+1, "counter", ctr)
		out, err := bitstr.XOR(b, ks)
		if err != nil {
			return Result{}, err
		}
		res.Trace.Add("xor", out, "block", i+1, "in", b, "keystream", ks)
		res.Blocks = append(res.Blocks, out)
		ctr = ctr.Increment()
	}
	return res, nil
}

func checkChain(c BlockCipher, iv bitstr.BitString, blocks []bitstr.BitString) error {
	if len(blocks) == 0 {
		return fmt.Errorf("%w: no blocks given", cryptoerr.ErrInvalidInput)
	}
	if iv.Len() == 0 {
		return fmt.Errorf("%w: iv is required", cryptoerr.ErrInvalidInput)
	}
	n := blocks[0].Len()
	for i, b := range blocks {
		if b.Len() != n {
			return fmt.Errorf("%w: block %d has %d bits, block 0 has %d", cryptoerr.ErrLengthMismatch, i, b.Len(), n)
		}
		if err := checkSize(c, b, i); err != nil {
			return err
		}
	}
	if iv.Len() != n {
		return fmt.Errorf("%w: iv has %d bits, blocks have %d", cryptoerr.ErrLengthMismatch, iv.Len(), n)
	}
	return nil
}

func checkSize(c BlockCipher, b bitstr.BitString, i int) error {
	if size := c.BlockSize(); size > 0 && b.Len() != size {
		return fmt.Errorf("%w: %s needs %d-bit blocks, block %d has %d", cryptoerr.ErrLengthMismatch, c.Name(), size, i, b.Len())
	}
	return nil
}
