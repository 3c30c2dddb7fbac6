package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// HashOrRead returns a bcrypt hash of password. A value that is already a
// bcrypt hash, such as a pre-hashed ADMIN_PASSWORD, is returned unchanged.
func HashOrRead(password string) ([]byte, error) {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(password, prefix) {
			return []byte(password), nil
		}
	}
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}
