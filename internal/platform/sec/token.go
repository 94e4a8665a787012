// Copyright (c) 2026 Libby. All rights reserved.
// Author: hello@libbyhq.dev

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// # Opaque Tokens

// GenerateSecureToken returns a hex-encoded random token of byteLength entropy bytes.
//
// It is used for refresh, password-reset, and email-verification tokens —
// values that are opaque to the client and resolved server-side.
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := rand.Read(buffer); err != nil {
		return "", fmt.Errorf("sec: failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}

// HashToken returns the hex-encoded SHA-256 digest of token.
//
// Opaque tokens are stored hashed so that a database leak does not expose
// usable credentials. SHA-256 (not bcrypt) is sufficient here because the
// input already carries full random entropy.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
