// Package pickupcode issues the 8-digit codes a beneficiary shows at the counter.
package pickupcode

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
)

const Length = 8

var upperBound = big.NewInt(100_000_000)

// Generate returns a zero-padded code drawn uniformly from [0, 10^8)
// using crypto/rand, so codes cannot be predicted from earlier ones.
func Generate() (string, error) {
	return GenerateFrom(rand.Reader)
}

// GenerateFrom is Generate with an explicit entropy source.
func GenerateFrom(r io.Reader) (string, error) {
	n, err := rand.Int(r, upperBound)
	if err != nil {
		return "", fmt.Errorf("generate pickup code: %w", err)
	}
	return fmt.Sprintf("%08d", n.Int64()), nil
}

// Valid reports whether code has the issued shape: exactly eight ASCII digits.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// Equal compares in constant time.
func Equal(issued, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(issued), []byte(presented)) == 1
}
