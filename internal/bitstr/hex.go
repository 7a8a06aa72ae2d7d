package bitstr

import (
	"fmt"
	"strings"

	"cryptolab/internal/cryptoerr"
)

const hexDigits = "0123456789ABCDEF"

// FromHex converts hex text (case-insensitive, whitespace ignored) into four
// bits per digit.
func FromHex(s string) (BitString, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil, fmt.Errorf("%w: empty hex string", cryptoerr.ErrInvalidInput)
	}
	out := make(BitString, 0, len(s)*4)
	for i := 0; i < len(s); i++ {
		v, ok := hexValue(s[i])
		if !ok {
			return nil, fmt.Errorf("%w: %q is not a hex digit (position %d)", cryptoerr.ErrInvalidInput, s[i], i)
		}
		out = append(out, FromUint(uint64(v), 4)...)
	}
	return out, nil
}

// Hex returns upper-case hex. The bits are left-padded with zeros to a
// multiple of four first.
func (b BitString) Hex() string {
	n := (len(b) + 3) / 4 * 4
	padded := b.PadLeft(n)
	var sb strings.Builder
	sb.Grow(n / 4)
	for i := 0; i < n; i += 4 {
		sb.WriteByte(hexDigits[padded[i:i+4].Uint()])
	}
	return sb.String()
}

// ParseKey accepts either a bit string or, when prefixed with "0x" or when it
// contains a non-binary hex digit, hex text.
func ParseKey(s string) (BitString, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") {
		return FromHex(s[2:])
	}
	if b, err := Parse(s); err == nil {
		return b, nil
	}
	return FromHex(s)
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
