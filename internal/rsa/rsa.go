// Package rsa derives textbook RSA keys from two small primes and encrypts
// integers with them. There is no padding; it exists to show the arithmetic.
package rsa

import (
	"fmt"

	"cryptolab/internal/cryptoerr"
	"cryptolab/internal/numtheory"
	"cryptolab/internal/trace"
)

// DefaultExponent is tried first when picking e.
const DefaultExponent = 65537

// Keys holds every value derived from p and q.
type Keys struct {
	P   int64 `json:"p"`
	Q   int64 `json:"q"`
	N   int64 `json:"n"`
	Phi int64 `json:"phi"`
	E   int64 `json:"e"`
	D   int64 `json:"d"`
}

// GenerateKeys derives n, φ(n), e and d from the primes p and q. The result
// is deterministic: e is 65537 when it fits and is coprime to φ, otherwise the
// smallest e >= 2 that is. p and q must be distinct: p == q fails with
// ErrInvalidInput.
func GenerateKeys(p, q int64) (Keys, trace.Trace, error) {
	var tr trace.Trace
	if p < 2 || q < 2 {
		return Keys{}, nil, fmt.Errorf("%w: p and q must be at least 2, got %d and %d", cryptoerr.ErrInvalidInput, p, q)
	}
	if !numtheory.IsPrime(p) {
		return Keys{}, nil, fmt.Errorf("%w: p = %d", cryptoerr.ErrNotPrime, p)
	}
	if !numtheory.IsPrime(q) {
		return Keys{}, nil, fmt.Errorf("%w: q = %d", cryptoerr.ErrNotPrime, q)
	}
	if p == q {
		return Keys{}, nil, fmt.Errorf("%w: p and q must differ", cryptoerr.ErrInvalidInput)
	}

	n, err := numtheory.Mul(p, q)
	if err != nil {
		return Keys{}, nil, err
	}
	tr.Add("n", n, "p", p, "q", q)

	phi, err := numtheory.Mul(p-1, q-1)
	if err != nil {
		return Keys{}, nil, err
	}
	tr.Add("phi", phi, "p-1", p-1, "q-1", q-1)

	e, err := chooseExponent(phi)
	if err != nil {
		return Keys{}, nil, err
	}
	tr.Add("e", e, "phi", phi, "gcd", numtheory.Gcd(e, phi))

	d, err := numtheory.ModInverse(e, phi)
	if err != nil {
		return Keys{}, nil, err
	}
	tr.Add("d", d, "e", e, "phi", phi)

	check, err := numtheory.MulMod(e, d, phi)
	if err != nil {
		return Keys{}, nil, err
	}
	tr.Add("verify", check, "e", e, "d", d, "phi", phi)

	return Keys{P: p, Q: q, N: n, Phi: phi, E: e, D: d}, tr, nil
}

func chooseExponent(phi int64) (int64, error) {
	if DefaultExponent < phi && numtheory.Gcd(DefaultExponent, phi) == 1 {
		return DefaultExponent, nil
	}
	for e := int64(2); e < phi; e++ {
		if numtheory.Gcd(e, phi) == 1 {
			return e, nil
		}
	}
	return 0, fmt.Errorf("%w: no e with 1 < e < φ = %d", cryptoerr.ErrInvalidInput, phi)
}

// Encrypt returns m^e mod n.
func Encrypt(m, n, e int64) (int64, trace.Trace, error) {
	if err := checkRange("message", m, n); err != nil {
		return 0, nil, err
	}
	return numtheory.ModPow(m, e, n)
}

// Decrypt returns c^d mod n.
func Decrypt(c, n, d int64) (int64, trace.Trace, error) {
	if err := checkRange("ciphertext", c, n); err != nil {
		return 0, nil, err
	}
	return numtheory.ModPow(c, d, n)
}

func checkRange(name string, x, n int64) error {
	if n < 2 {
		return fmt.Errorf("%w: modulus must be at least 2, got %d", cryptoerr.ErrInvalidInput, n)
	}
	if x < 0 || x >= n {
		return fmt.Errorf("%w: %s %d must satisfy 0 <= x < %d", cryptoerr.ErrOutOfRange, name, x, n)
	}
	return nil
}
