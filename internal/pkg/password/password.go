package password

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the default bcrypt cost
	DefaultCost = 12

	// MinLength is the minimum accepted password length
	MinLength = 8

	tempLength = 8
)

// Hash hashes a password using bcrypt
func Hash(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a password with a hash
func Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// HashToken hashes a token using SHA256 (for refresh and reset tokens)
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// Validate checks if password meets requirements
func Validate(password string) bool {
	return len(password) >= MinLength
}

// GenerateTemp creates a temporary password for migrated accounts:
// random bytes base64-encoded, filtered to alphanumerics, truncated to
// 8 characters, with a "!" suffix so it passes complexity checks.
func GenerateTemp() (string, error) {
	for {
		raw := make([]byte, 6)
		if _, err := rand.Read(raw); err != nil {
			return "", err
		}

		encoded := base64.StdEncoding.EncodeToString(raw)
		filtered := make([]byte, 0, len(encoded))
		for i := 0; i < len(encoded); i++ {
			c := encoded[i]
			if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
				filtered = append(filtered, c)
			}
		}

		// Base64 of 6 bytes is 8 chars; '+' or '/' can shorten the
		// filtered result, in which case we draw again.
		if len(filtered) >= tempLength {
			return string(filtered[:tempLength]) + "!", nil
		}
	}
}

// GenerateResetToken creates an opaque one-time token for password resets
func GenerateResetToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
