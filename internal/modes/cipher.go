// Package modes simulates the ECB, CBC and CTR confidentiality modes over a
// pluggable single-block primitive. Blocks are BitStrings supplied by the
// caller; nothing is padded.
package modes

import (
	"cryptolab/internal/bitstr"
)

// BlockCipher encrypts and decrypts one block.
type BlockCipher interface {
	Name() string
	// BlockSize is the block length in bits, or 0 when any length works.
	BlockSize() int
	EncryptBlock(block bitstr.BitString) (bitstr.BitString, error)
	DecryptBlock(block bitstr.BitString) (bitstr.BitString, error)
}

// XORCipher is the classroom primitive E(b) = b ⊕ key, the key being padded
// with zeros or truncated to the block length. It is its own inverse.
type XORCipher struct {
	Key bitstr.BitString
}

func (x XORCipher) Name() string { return "xor" }

func (x XORCipher) BlockSize() int { return 0 }

func (x XORCipher) EncryptBlock(block bitstr.BitString) (bitstr.BitString, error) {
	return bitstr.XOR(block, x.Key.Fit(block.Len()))
}

func (x XORCipher) DecryptBlock(block bitstr.BitString) (bitstr.BitString, error) {
	return x.EncryptBlock(block)
}
