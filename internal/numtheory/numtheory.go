// Package numtheory implements the number theory behind the RSA lessons:
// gcd, Bézout coefficients, modular inverse, square-and-multiply
// exponentiation, Euler's totient and trial-division primality.
//
// All values are int64. Products are taken with a 128-bit intermediate
// (math/bits) so moduli up to 2^63-1 never overflow.
package numtheory

import (
	"fmt"
	"math/bits"

	"cryptolab/internal/cryptoerr"
	"cryptolab/internal/trace"
)

// Gcd returns the greatest common divisor of |a| and |b|. Gcd(0, 0) is 0.
func Gcd(a, b int64) int64 {
	a, b = abs(a), abs(b)
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// ExtendedGcd returns (g, s, t) with s*a + t*b = g = gcd(a, b) for a, b >= 0.
// It unrolls the recursion g = ExtendedGcd(b mod a, a) with the coefficients
// transposed; the base case a = 0 yields (b, 0, 1).
func ExtendedGcd(a, b int64) (g, s, t int64) {
	var quotients []int64
	for a != 0 {
		quotients = append(quotients, b/a)
		a, b = b%a, a
	}
	g, s, t = b, 0, 1
	for i := len(quotients) - 1; i >= 0; i-- {
		s, t = t-quotients[i]*s, s
	}
	return g, s, t
}

// ModInverse returns x in [0, m) with a*x ≡ 1 (mod m).
func ModInverse(a, m int64) (int64, error) {
	if m < 1 {
		return 0, fmt.Errorf("%w: modulus must be positive, got %d", cryptoerr.ErrInvalidInput, m)
	}
	a = normalize(a, m)
	if g := Gcd(a, m); g != 1 {
		return 0, fmt.Errorf("%w: gcd(%d, %d) = %d", cryptoerr.ErrNoInverse, a, m, g)
	}
	_, s, _ := ExtendedGcd(a, m)
	return normalize(s, m), nil
}

// ModPow computes base^exponent mod modulus by square-and-multiply. The trace
// has one "multiply" step per odd exponent bit and one "square" step per
// squaring, in the order performed.
func ModPow(base, exponent, modulus int64) (int64, trace.Trace, error) {
	var tr trace.Trace
	if modulus < 1 {
		return 0, nil, fmt.Errorf("%w: modulus must be positive, got %d", cryptoerr.ErrInvalidInput, modulus)
	}
	if exponent < 0 {
		return 0, nil, fmt.Errorf("%w: exponent must be non-negative, got %d", cryptoerr.ErrInvalidInput, exponent)
	}
	if modulus == 1 {
		tr.Add("result", 0, "modulus", 1)
		return 0, tr, nil
	}

	result := int64(1)
	base = normalize(base, modulus)
	tr.Add("init", result, "base", base, "modulus", modulus)

	for exponent > 0 {
		if exponent%2 == 1 {
			result = mulMod(result, base, modulus)
			tr.Add("multiply", result, "exponent", exponent, "modulus", modulus)
		}
		exponent /= 2
		if exponent > 0 {
			base = mulMod(base, base, modulus)
			tr.Add("square", base, "modulus", modulus)
		}
	}
	tr.Add("result", result)
	return result, tr, nil
}

// EulerPhi returns φ(n) using trial division up to √n.
func EulerPhi(n int64) (int64, error) {
	if n < 1 {
		return 0, fmt.Errorf("%w: φ(n) needs n >= 1, got %d", cryptoerr.ErrInvalidInput, n)
	}
	result := n
	for i := int64(2); i <= n/i; i++ {
		if n%i == 0 {
			for n%i == 0 {
				n /= i
			}
			result -= result / i
		}
	}
	if n > 1 {
		result -= result / n
	}
	return result, nil
}

// IsPrime reports whether n is prime using a 6k±1 trial-division wheel.
func IsPrime(n int64) bool {
	if n <= 1 {
		return false
	}
	if n <= 3 {
		return true
	}
	if n%2 == 0 || n%3 == 0 {
		return false
	}
	for i := int64(5); i <= n/i; i += 6 {
		if n%i == 0 || n%(i+2) == 0 {
			return false
		}
	}
	return true
}

// MulMod returns a*b mod m for m >= 1 without overflow.
func MulMod(a, b, m int64) (int64, error) {
	if m < 1 {
		return 0, fmt.Errorf("%w: modulus must be positive, got %d", cryptoerr.ErrInvalidInput, m)
	}
	return mulMod(normalize(a, m), normalize(b, m), m), nil
}

// Mul returns a*b or ErrOutOfRange when the product does not fit in int64.
// Both factors must be non-negative.
func Mul(a, b int64) (int64, error) {
	if a < 0 || b < 0 {
		return 0, fmt.Errorf("%w: factors must be non-negative", cryptoerr.ErrInvalidInput)
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > 1<<63-1 {
		return 0, fmt.Errorf("%w: %d * %d overflows int64", cryptoerr.ErrOutOfRange, a, b)
	}
	return int64(lo), nil
}

// mulMod expects a, b in [0, m).
func mulMod(a, b, m int64) int64 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	return int64(bits.Rem64(hi, lo, uint64(m)))
}

func normalize(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

func abs(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}
