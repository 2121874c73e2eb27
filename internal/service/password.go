package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

const saltLength = 16

// HashPassword generates a random salt and the matching salted hash
// for credential provisioning. Not part of the request path.
func HashPassword(password string) (salt, hash string, err error) {
	raw := make([]byte, saltLength)
	if _, err = rand.Read(raw); err != nil {
		return "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	salt = hex.EncodeToString(raw)
	return salt, saltedHash(salt, password), nil
}

// VerifyPassword checks password against the configured salted hash
// using a constant-time comparison.
func VerifyPassword(password, salt, expectedHash string) bool {
	computed := saltedHash(salt, password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(expectedHash)) == 1
}

func saltedHash(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + password))
	return hex.EncodeToString(sum[:])
}
