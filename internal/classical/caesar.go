// Package classical contains the pre-computer ciphers and the attacks used
// against them: Caesar shift, brute force, frequency analysis, substitution
// rules, the one-time pad and the possibilistic-security check.
package classical

import (
	"strings"

	"cryptolab/internal/trace"
)

// Direction selects encryption or decryption.
type Direction int

const (
	Encrypt Direction = iota
	Decrypt
)

func (d Direction) String() string {
	if d == Decrypt {
		return "decrypt"
	}
	return "encrypt"
}

// ParseDirection maps "encrypt"/"decrypt" (any case) to a Direction.
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "encrypt", "enc":
		return Encrypt, true
	case "decrypt", "dec":
		return Decrypt, true
	}
	return Encrypt, false
}

// CaesarShift shifts every ASCII letter by shift places inside its case
// class. Decryption applies the forward shift (26 - shift) mod 26. Other
// characters pass through unchanged.
func CaesarShift(text string, shift int, dir Direction) string {
	k := effectiveShift(shift, dir)
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		b.WriteRune(shiftRune(r, k))
	}
	return b.String()
}

// Caesar is CaesarShift with a trace: the effective forward shift followed by
// one step per letter.
func Caesar(text string, shift int, dir Direction) (string, trace.Trace) {
	var tr trace.Trace
	k := effectiveShift(shift, dir)
	tr.Add("shift", k, "shift", shift, "direction", dir)
	var b strings.Builder
	for _, r := range text {
		out := shiftRune(r, k)
		if isLetter(r) {
			tr.Add("letter", string(out), "in", string(r))
		}
		b.WriteRune(out)
	}
	res := b.String()
	tr.Add("result", res)
	return res, tr
}

// Candidate is one brute-force decryption.
type Candidate struct {
	Shift int    `json:"shift"`
	Text  string `json:"text"`
}

// BruteForceCaesar decrypts text under all 26 shifts, 0 through 25.
func BruteForceCaesar(text string) []Candidate {
	out := make([]Candidate, 26)
	for s := 0; s < 26; s++ {
		out[s] = Candidate{Shift: s, Text: CaesarShift(text, s, Decrypt)}
	}
	return out
}

func effectiveShift(shift int, dir Direction) int {
	k := ((shift % 26) + 26) % 26
	if dir == Decrypt {
		k = (26 - k) % 26
	}
	return k
}

func shiftRune(r rune, k int) rune {
	switch {
	case r >= 'A' && r <= 'Z':
		return 'A' + (r-'A'+rune(k))%26
	case r >= 'a' && r <= 'z':
		return 'a' + (r-'a'+rune(k))%26
	}
	return r
}

func isLetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}
