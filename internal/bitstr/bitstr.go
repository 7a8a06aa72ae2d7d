// Package bitstr provides BitString, a variable-length sequence of binary
// digits used for XOR, one-time pad, SPN blocks and the mode simulators.
//
// The textual form is ASCII '0'/'1'. XOR is strict: operands of unequal
// length fail with cryptoerr.ErrLengthMismatch. Callers that want the lenient
// behaviour use Fit or PadLeft explicitly.
package bitstr

import (
	"fmt"
	"math/rand"
	"strings"

	"cryptolab/internal/cryptoerr"
	"cryptolab/internal/trace"
)

// BitString holds one element per bit, each 0 or 1, most significant first.
type BitString []byte

// Parse validates s and returns its bits. Surrounding whitespace is ignored.
func Parse(s string) (BitString, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty bit string", cryptoerr.ErrInvalidInput)
	}
	out := make(BitString, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
		case '1':
			out[i] = 1
		default:
			return nil, fmt.Errorf("%w: %q is not a binary digit (position %d)", cryptoerr.ErrInvalidInput, s[i], i)
		}
	}
	return out, nil
}

// MustParse is Parse for literals; it panics on malformed input.
func MustParse(s string) BitString {
	b, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return b
}

// ParseBlocks splits s on whitespace and parses every block.
func ParseBlocks(s string) ([]BitString, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no blocks given", cryptoerr.ErrInvalidInput)
	}
	out := make([]BitString, len(fields))
	for i, f := range fields {
		b, err := Parse(f)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}

// String returns the '0'/'1' text form.
func (b BitString) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, v := range b {
		sb.WriteByte('0' + v)
	}
	return sb.String()
}

// Len returns the number of bits.
func (b BitString) Len() int { return len(b) }

// Equal reports whether both strings have the same bits.
func (b BitString) Equal(o BitString) bool {
	if len(b) != len(o) {
		return false
	}
	for i := range b {
		if b[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (b BitString) Clone() BitString {
	return append(BitString(nil), b...)
}

func (b BitString) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *BitString) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// XOR returns a ⊕ b for operands of equal length.
func XOR(a, b BitString) (BitString, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("%w: %d bits vs %d bits", cryptoerr.ErrLengthMismatch, len(a), len(b))
	}
	out := make(BitString, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out, nil
}

// XORSteps is XOR with one "bit" step per position and a closing "result".
func XORSteps(a, b BitString) (BitString, trace.Trace, error) {
	out, err := XOR(a, b)
	if err != nil {
		return nil, nil, err
	}
	var tr trace.Trace
	for i := range out {
		tr.Add("bit", out[i], "position", i+1, "a", a[i], "b", b[i])
	}
	tr.Add("result", out)
	return out, tr, nil
}

// Increment returns b+1 modulo 2^len(b); the length never changes.
func (b BitString) Increment() BitString {
	out := b.Clone()
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] == 0 {
			out[i] = 1
			return out
		}
		out[i] = 0
	}
	return out
}

// Fit returns b padded with trailing zeros or truncated to n bits.
func (b BitString) Fit(n int) BitString {
	out := make(BitString, n)
	copy(out, b)
	return out
}

// PadLeft returns b with leading zeros added until it is n bits long.
// Strings already at least n bits long are returned unchanged.
func (b BitString) PadLeft(n int) BitString {
	if len(b) >= n {
		return b.Clone()
	}
	out := make(BitString, n)
	copy(out[n-len(b):], b)
	return out
}

// Uint returns the value of the low 64 bits.
func (b BitString) Uint() uint64 {
	var v uint64
	for _, bit := range b {
		v = v<<1 | uint64(bit)
	}
	return v
}

// FromUint returns v as a width-bit string, keeping the low width bits.
func FromUint(v uint64, width int) BitString {
	out := make(BitString, width)
	for i := width - 1; i >= 0; i-- {
		out[i] = byte(v & 1)
		v >>= 1
	}
	return out
}

// Bytes packs the bits into bytes. The length must be a multiple of 8.
func (b BitString) Bytes() ([]byte, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("%w: %d bits is not a whole number of bytes", cryptoerr.ErrLengthMismatch, len(b))
	}
	out := make([]byte, len(b)/8)
	for i, bit := range b {
		out[i/8] |= bit << (7 - uint(i%8))
	}
	return out, nil
}

// FromBytes unpacks p into 8*len(p) bits.
func FromBytes(p []byte) BitString {
	out := make(BitString, 0, len(p)*8)
	for _, c := range p {
		out = append(out, FromUint(uint64(c), 8)...)
	}
	return out
}

// Random returns n independent uniform bits. It is not suitable for real keys.
func Random(n int) BitString {
	out := make(BitString, n)
	for i := range out {
		out[i] = byte(rand.Intn(2))
	}
	return out
}
