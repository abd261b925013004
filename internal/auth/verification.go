package auth

import (
	"crypto/rand"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	VerificationCodeLength   = 6
	verificationCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateVerificationCode returns a uniformly random uppercase alphanumeric
// code.
func GenerateVerificationCode() (string, error) {
	max := big.NewInt(int64(len(verificationCodeAlphabet)))
	var sb strings.Builder
	sb.Grow(VerificationCodeLength)
	for i := 0; i < VerificationCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(verificationCodeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}

func NormalizeVerificationCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// HashVerificationCode salts and hashes a raw code for storage.
func HashVerificationCode(code string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(NormalizeVerificationCode(code)), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerificationCodeMatches compares in constant time.
func VerificationCodeMatches(hash, code string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(NormalizeVerificationCode(code))) == nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// NormalizeEmail trims whitespace and lowercases the domain part.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
