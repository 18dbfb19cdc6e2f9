package utils

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a password with a hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// GenerateToken generates a random hex token of 2*length characters
func GenerateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// IsValidEmail validates an email address
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsValidUsername validates a username (letters, digits, '_' and '-', 2-32 chars)
func IsValidUsername(username string) bool {
	if len(username) < 2 || len(username) > 32 {
		return false
	}
	return usernameRegex.MatchString(username)
}

// IsValidPassword validates a password (min 6 chars)
func IsValidPassword(password string) bool {
	return len(password) >= 6
}
