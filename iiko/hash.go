package iiko

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashPassword returns the lowercase hex SHA-1 of a plain password,
// which is the credential form the iiko server accepts on /auth.
func HashPassword(plain string) string {
	sum := sha1.Sum([]byte(plain))
	return hex.EncodeToString(sum[:])
}
