package classical

import (
	"fmt"

	"cryptolab/internal/bitstr"
	"cryptolab/internal/cryptoerr"
	"cryptolab/internal/trace"
)

// OTPKey draws a random pad as long as plaintext.
func OTPKey(plaintext bitstr.BitString) (bitstr.BitString, error) {
	if plaintext.Len() == 0 {
		return nil, fmt.Errorf("%w: plaintext is empty", cryptoerr.ErrInvalidInput)
	}
	return bitstr.Random(plaintext.Len()), nil
}

// OTPApply XORs text with key. The same call encrypts and decrypts; the key must
// be exactly as long as the text.
func OTPApply(text, key bitstr.BitString) (bitstr.BitString, trace.Trace, error) {
	if key.Len() == 0 {
		return nil, nil, fmt.Errorf("%w: key is empty", cryptoerr.ErrInvalidInput)
	}
	return bitstr.XORSteps(text, key)
}
