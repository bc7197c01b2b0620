// Package security provides session token utilities and secure random
// generation.
package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateULID generates a new ULID string.
func GenerateULID() string {
	return ulid.Make().String()
}

// GenerateSecureKey creates a cryptographically secure random key and
// returns it as a hex string. Used for session signing secrets.
func GenerateSecureKey(length int) (string, error) {
	bytes := make([]byte, length/2) // each byte becomes two hex characters
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure key: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
