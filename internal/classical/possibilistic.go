package classical

import (
	"fmt"
	"slices"

	"cryptolab/internal/cryptoerr"
)

// System is a finite cipher given as a table plaintext -> key -> ciphertext.
type System struct {
	Name        string                       `json:"name"`
	Plaintexts  []string                     `json:"plaintexts"`
	Ciphertexts []string                     `json:"ciphertexts"`
	Keys        []string                     `json:"keys"`
	Table       map[string]map[string]string `json:"table"`
}

// Assessment is the outcome of CheckPossibilistic.
type Assessment struct {
	Secure          bool     `json:"secure"`
	ImpossiblePairs []string `json:"impossible_pairs,omitempty"`
}

// ExampleSystems are the two tables used in the fundamentals lesson: a Latin
// square (secure) and a table where some pairs cannot occur.
var ExampleSystems = map[int]System{
	1: {
		Name:        "latin-square",
		Plaintexts:  []string{"a", "b", "c"},
		Ciphertexts: []string{"A", "B", "C"},
		Keys:        []string{"k1", "k2", "k3"},
		Table: map[string]map[string]string{
			"a": {"k1": "A", "k2": "B", "k3": "C"},
			"b": {"k1": "B", "k2": "C", "k3": "A"},
			"c": {"k1": "C", "k2": "A", "k3": "B"},
		},
	},
	2: {
		Name:        "biased",
		Plaintexts:  []string{"a", "b", "c"},
		Ciphertexts: []string{"A", "B", "C"},
		Keys:        []string{"k1", "k2", "k3"},
		Table: map[string]map[string]string{
			"a": {"k1": "A", "k2": "B", "k3": "A"},
			"b": {"k1": "B", "k2": "A", "k3": "B"},
			"c": {"k1": "C", "k2": "C", "k3": "C"},
		},
	},
}

// Validate checks that every table row is complete.
func (s System) Validate() error {
	if len(s.Plaintexts) == 0 || len(s.Ciphertexts) == 0 || len(s.Keys) == 0 {
		return fmt.Errorf("%w: system needs plaintexts, ciphertexts and keys", cryptoerr.ErrInvalidInput)
	}
	for _, p := range s.Plaintexts {
		row, ok := s.Table[p]
		if !ok {
			return fmt.Errorf("%w: no table row for plaintext %q", cryptoerr.ErrInvalidInput, p)
		}
		for _, k := range s.Keys {
			c, ok := row[k]
			if !ok {
				return fmt.Errorf("%w: plaintext %q has no entry for key %q", cryptoerr.ErrInvalidInput, p, k)
			}
			if !slices.Contains(s.Ciphertexts, c) {
				return fmt.Errorf("%w: %q is not a listed ciphertext", cryptoerr.ErrInvalidInput, c)
			}
		}
	}
	return nil
}

// KeysFor returns, in key order, every key that maps plaintext to ciphertext.
func (s System) KeysFor(plaintext, ciphertext string) []string {
	var out []string
	row := s.Table[plaintext]
	for _, k := range s.Keys {
		if c, ok := row[k]; ok && c == ciphertext {
			out = append(out, k)
		}
	}
	return out
}

// CheckPossibilistic reports whether every (plaintext, ciphertext) pair is
// produced by at least one key, listing the pairs that are not.
func (s System) CheckPossibilistic() Assessment {
	a := Assessment{Secure: true}
	for _, p := range s.Plaintexts {
		for _, c := range s.Ciphertexts {
			if len(s.KeysFor(p, c)) == 0 {
				a.Secure = false
				a.ImpossiblePairs = append(a.ImpossiblePairs, "("+p+","+c+")")
			}
		}
	}
	return a
}
