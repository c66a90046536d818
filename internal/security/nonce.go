package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const nonceBytes = 16 // 128 bits

// GenerateNonce returns a hex nonce, which also satisfies the alphanumeric
// nonce grammar of sign-in messages.
func GenerateNonce() (string, error) {
	b := make([]byte, nonceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return hex.EncodeToString(b), nil
}
