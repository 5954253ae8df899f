package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Hex returns n random bytes encoded as hex.
func Hex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
