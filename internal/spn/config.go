// Package spn implements a toy substitution-permutation network over a
// 16-bit block: four 4-bit S-boxes, a fixed bit permutation and round keys
// that are plain copies of the master key.
package spn

import (
	"fmt"
	"strings"

	"cryptolab/internal/bitstr"
	"cryptolab/internal/cryptoerr"
	"cryptolab/internal/trace"
)

const (
	// BlockSize is the block and key length in bits.
	BlockSize = 16
	// MinRounds and MaxRounds bound Config.Rounds.
	MinRounds = 1
	MaxRounds = 4

	nibbles = BlockSize / 4
)

// DefaultPermutation sends bit i of nibble j to bit j of nibble i.
var DefaultPermutation = [BlockSize]int{0, 4, 8, 12, 1, 5, 9, 13, 2, 6, 10, 14, 3, 7, 11, 15}

// Config is an immutable SPN setup. Build it with NewConfig.
type Config struct {
	Rounds      int                `json:"rounds"`
	SBox        [16]uint8          `json:"sbox"`
	InvSBox     [16]uint8          `json:"inv_sbox"`
	Permutation [BlockSize]int     `json:"permutation"`
	Key         bitstr.BitString   `json:"key"`
	RoundKeys   []bitstr.BitString `json:"round_keys"`
}

// NewConfig validates its inputs and derives the inverse S-box and the
// rounds+1 round keys.
func NewConfig(rounds int, sboxHex string, key bitstr.BitString) (*Config, error) {
	if rounds < MinRounds || rounds > MaxRounds {
		return nil, fmt.Errorf("%w: rounds must be in [%d, %d], got %d", cryptoerr.ErrInvalidInput, MinRounds, MaxRounds, rounds)
	}
	sbox, inv, err := ParseSBox(sboxHex)
	if err != nil {
		return nil, err
	}
	if key.Len() != BlockSize {
		return nil, fmt.Errorf("%w: key must be %d bits, got %d", cryptoerr.ErrInvalidInput, BlockSize, key.Len())
	}
	c := &Config{
		Rounds:      rounds,
		SBox:        sbox,
		InvSBox:     inv,
		Permutation: DefaultPermutation,
		Key:         key.Clone(),
		RoundKeys:   make([]bitstr.BitString, rounds+1),
	}
	for i := range c.RoundKeys {
		c.RoundKeys[i] = key.Clone()
	}
	return c, nil
}

// ParseSBox reads 16 hex digits, entry i being the image of i, and returns
// the S-box and its inverse. Whitespace is ignored.
func ParseSBox(s string) (sbox, inv [16]uint8, err error) {
	s = strings.Join(strings.Fields(s), "")
	if len(s) != 16 {
		return sbox, inv, fmt.Errorf("%w: s-box needs 16 hex digits, got %d", cryptoerr.ErrInvalidInput, len(s))
	}
	bits, err := bitstr.FromHex(s)
	if err != nil {
		return sbox, inv, err
	}
	var seen [16]bool
	for i := range sbox {
		v := uint8(bits[i*4 : i*4+4].Uint())
		if seen[v] {
			return sbox, inv, fmt.Errorf("%w: value %X appears twice", cryptoerr.ErrInvalidSBox, v)
		}
		seen[v] = true
		sbox[i] = v
		inv[v] = uint8(i)
	}
	return sbox, inv, nil
}

// SBoxHex returns the S-box in the form ParseSBox accepts.
func (c *Config) SBoxHex() string {
	var b strings.Builder
	for _, v := range c.SBox {
		b.WriteByte("0123456789ABCDEF"[v])
	}
	return b.String()
}

// Encrypt runs the network on a 16-bit plaintext. The trace has one step per
// sub-stage: the initial key mixing, then substitute, permute and key mixing
// for every inner round, then the last substitute and key mixing.
func (c *Config) Encrypt(plaintext bitstr.BitString) (bitstr.BitString, trace.Trace, error) {
	if err := checkBlock("plaintext", plaintext); err != nil {
		return nil, nil, err
	}
	var tr trace.Trace
	state, err := c.mix(plaintext, 0, &tr)
	if err != nil {
		return nil, nil, err
	}
	for r := 1; r < c.Rounds; r++ {
		state = c.substitute(state, c.SBox)
		tr.Add("substitute", state, "round", r)
		state = c.permute(state)
		tr.Add("permute", state, "round", r)
		if state, err = c.mix(state, r, &tr); err != nil {
			return nil, nil, err
		}
	}
	state = c.substitute(state, c.SBox)
	tr.Add("substitute", state, "round", c.Rounds)
	if state, err = c.mix(state, c.Rounds, &tr); err != nil {
		return nil, nil, err
	}
	tr.Add("result", state)
	return state, tr, nil
}

// Decrypt undoes Encrypt, walking the round keys in reverse order.
func (c *Config) Decrypt(ciphertext bitstr.BitString) (bitstr.BitString, trace.Trace, error) {
	if err := checkBlock("ciphertext", ciphertext); err != nil {
		return nil, nil, err
	}
	var tr trace.Trace
	state, err := c.mix(ciphertext, c.Rounds, &tr)
	if err != nil {
		return nil, nil, err
	}
	state = c.substitute(state, c.InvSBox)
	tr.Add("unsubstitute", state, "round", c.Rounds)
	for r := c.Rounds - 1; r >= 1; r-- {
		if state, err = c.mix(state, r, &tr); err != nil {
			return nil, nil, err
		}
		state = c.unpermute(state)
		tr.Add("unpermute", state, "round", r)
		state = c.substitute(state, c.InvSBox)
		tr.Add("unsubstitute", state, "round", r)
	}
	if state, err = c.mix(state, 0, &tr); err != nil {
		return nil, nil, err
	}
	tr.Add("result", state)
	return state, tr, nil
}

// Name, BlockSize, EncryptBlock and DecryptBlock let a Config drive the mode
// simulators.
func (c *Config) Name() string { return "spn" }

func (c *Config) BlockSize() int { return BlockSize }

func (c *Config) EncryptBlock(block bitstr.BitString) (bitstr.BitString, error) {
	out, _, err := c.Encrypt(block)
	return out, err
}

func (c *Config) DecryptBlock(block bitstr.BitString) (bitstr.BitString, error) {
	out, _, err := c.Decrypt(block)
	return out, err
}

func (c *Config) mix(state bitstr.BitString, round int, tr *trace.Trace) (bitstr.BitString, error) {
	out, err := bitstr.XOR(state, c.RoundKeys[round])
	if err != nil {
		return nil, err
	}
	tr.Add("mix", out, "round", round, "key", c.RoundKeys[round])
	return out, nil
}

func (c *Config) substitute(state bitstr.BitString, box [16]uint8) bitstr.BitString {
	out := make(bitstr.BitString, 0, BlockSize)
	for j := 0; j < nibbles; j++ {
		v := state[j*4 : j*4+4].Uint()
		out = append(out, bitstr.FromUint(uint64(box[v]), 4)...)
	}
	return out
}

func (c *Config) permute(state bitstr.BitString) bitstr.BitString {
	out := make(bitstr.BitString, BlockSize)
	for i, p := range c.Permutation {
		out[p] = state[i]
	}
	return out
}

func (c *Config) unpermute(state bitstr.BitString) bitstr.BitString {
	out := make(bitstr.BitString, BlockSize)
	for i, p := range c.Permutation {
		out[i] = state[p]
	}
	return out
}

func checkBlock(name string, b bitstr.BitString) error {
	if b.Len() != BlockSize {
		return fmt.Errorf("%w: %s must be %d bits, got %d", cryptoerr.ErrInvalidInput, name, BlockSize, b.Len())
	}
	return nil
}
