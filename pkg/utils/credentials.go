// Package utils holds the credential primitives shared by login, the password
// recovery flow, and tenant provisioning: bcrypt hashing and the random
// secrets (reset tokens, seed credentials, invite codes) built on crypto/rand.
package utils

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a password (or a provisioned seed credential) with
// bcrypt. The plaintext is never stored; provisioning discards it entirely.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
func CheckPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// RandomToken returns a URL-safe random token of n bytes of entropy. Used for
// single-use reset tokens and the discarded credential of a seed admin.
func RandomToken(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// RandomInviteCode returns a short hex invite code for workspace joining.
func RandomInviteCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
