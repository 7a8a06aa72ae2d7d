// Package cryptoerr defines the error kinds shared by every engine.
package cryptoerr

import "errors"

// Sentinel errors for errors.Is() checks.
var (
	// ErrInvalidInput is returned for malformed binary/hex strings or numeric fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLengthMismatch is returned when operands must have equal length but do not.
	ErrLengthMismatch = errors.New("length mismatch")

	// ErrOutOfRange is returned when a value lies outside its permitted range.
	ErrOutOfRange = errors.New("out of range")

	// ErrNotPrime is returned when an RSA prime candidate fails the primality test.
	ErrNotPrime = errors.New("not prime")

	// ErrNoInverse is returned when a modular inverse does not exist.
	ErrNoInverse = errors.New("no modular inverse")

	// ErrInvalidSBox is returned when an S-box is not a bijection on 0..15.
	ErrInvalidSBox = errors.New("invalid s-box")

	// ErrUnconfigured is returned when the SPN is used before setup.
	ErrUnconfigured = errors.New("spn not configured")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrInvalidInput, "InvalidInput"},
	{ErrLengthMismatch, "LengthMismatch"},
	{ErrOutOfRange, "OutOfRange"},
	{ErrNotPrime, "NotPrime"},
	{ErrNoInverse, "NoInverse"},
	{ErrInvalidSBox, "InvalidSBox"},
	{ErrUnconfigured, "Unconfigured"},
}

// Kind returns the name of the first error kind err wraps, or "" if none.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return ""
}
