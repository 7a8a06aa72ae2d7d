package modes

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"slices"
	"strings"

	"github.com/RyuaNerin/go-krypto/hight"
	"github.com/RyuaNerin/go-krypto/seed"
	"github.com/aead/camellia"
	"golang.org/x/crypto/cast5"

	"cryptolab/internal/bitstr"
	"cryptolab/internal/cryptoerr"
)

// Primitive describes a block cipher learners can plug into a mode.
type Primitive struct {
	Name        string `json:"name"`
	BlockBits   int    `json:"block_bits"`
	KeyBits     []int  `json:"key_bits"`
	Description string `json:"description"`

	newBlock func(key []byte) (cipher.Block, error)
}

var catalogue = []Primitive{
	{Name: "xor", Description: "block XOR key; key padded or truncated to the block"},
	{Name: "spn", BlockBits: 16, KeyBits: []int{16}, Description: "toy substitution-permutation network, configured per learner"},
	{Name: "aes", BlockBits: 128, KeyBits: []int{128, 192, 256}, Description: "AES (FIPS 197)", newBlock: aes.NewCipher},
	{Name: "seed", BlockBits: 128, KeyBits: []int{128}, Description: "SEED (KISA)", newBlock: newSEED},
	{Name: "hight", BlockBits: 64, KeyBits: []int{128}, Description: "HIGHT (KISA lightweight)", newBlock: newHIGHT},
	{Name: "camellia", BlockBits: 128, KeyBits: []int{128, 192, 256}, Description: "Camellia (RFC 3713)", newBlock: camellia.NewCipher},
	{Name: "cast128", BlockBits: 64, KeyBits: []int{128}, Description: "CAST-128 (RFC 2144)", newBlock: newCAST},
}

func newSEED(key []byte) (cipher.Block, error) {
	return seed.NewCipher(key)
}

func newHIGHT(key []byte) (cipher.Block, error) {
	return hight.NewCipher(key)
}

func newCAST(key []byte) (cipher.Block, error) {
	return cast5.NewCipher(key)
}

// Catalogue lists the supported primitives.
func Catalogue() []Primitive {
	return slices.Clone(catalogue)
}

// LookupPrimitive finds a primitive by case-insensitive name.
func LookupPrimitive(name string) (Primitive, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "xor"
	}
	for _, p := range catalogue {
		if p.Name == name {
			return p, true
		}
	}
	return Primitive{}, false
}

// NewPrimitive keys the named primitive. "spn" is not built here since its
// key lives in the learner's SPN setup.
func NewPrimitive(name string, key bitstr.BitString) (BlockCipher, error) {
	p, ok := LookupPrimitive(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown primitive %q", cryptoerr.ErrInvalidInput, name)
	}
	if key.Len() == 0 {
		return nil, fmt.Errorf("%w: key is empty", cryptoerr.ErrInvalidInput)
	}
	switch {
	case p.Name == "xor":
		return XORCipher{Key: key.Clone()}, nil
	case p.newBlock == nil:
		return nil, fmt.Errorf("%w: primitive %q needs its own setup", cryptoerr.ErrInvalidInput, p.Name)
	}
	if !slices.Contains(p.KeyBits, key.Len()) {
		return nil, fmt.Errorf("%w: %s takes a key of %v bits, got %d", cryptoerr.ErrInvalidInput, p.Name, p.KeyBits, key.Len())
	}
	raw, err := key.Bytes()
	if err != nil {
		return nil, err
	}
	b, err := p.newBlock(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", cryptoerr.ErrInvalidInput, p.Name, err)
	}
	return &blockAdapter{name: p.Name, b: b}, nil
}

// blockAdapter drives a crypto/cipher.Block with BitStrings.
type blockAdapter struct {
	name string
	b    cipher.Block
}

func (a *blockAdapter) Name() string { return a.name }

func (a *blockAdapter) BlockSize() int { return a.b.BlockSize() * 8 }

func (a *blockAdapter) EncryptBlock(block bitstr.BitString) (bitstr.BitString, error) {
	return a.run(block, a.b.Encrypt)
}

func (a *blockAdapter) DecryptBlock(block bitstr.BitString) (bitstr.BitString, error) {
	return a.run(block, a.b.Decrypt)
}

func (a *blockAdapter) run(block bitstr.BitString, fn func(dst, src []byte)) (bitstr.BitString, error) {
	if block.Len() != a.BlockSize() {
		return nil, fmt.Errorf("%w: %s blocks are %d bits, got %d", cryptoerr.ErrLengthMismatch, a.name, a.BlockSize(), block.Len())
	}
	src, err := block.Bytes()
	if err != nil {
		return nil, err
	}
	dst := make([]byte, len(src))
	fn(dst, src)
	return bitstr.FromBytes(dst), nil
}
