package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	generatedPasswordLen = 12
	symbols              = "!@#$%&*"
	upperLetters         = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerLetters         = "abcdefghijkmnopqrstuvwxyz"
	digits               = "23456789"
)

// GenerateSecurePassword returns a random password holding at least one
// upper, lower, digit and symbol character. Do not log the returned string.
func GenerateSecurePassword() (string, error) {
	pick := func(s string) (byte, error) {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(s))))
		if err != nil {
			return 0, err
		}
		return s[n.Int64()], nil
	}
	classes := []string{upperLetters, lowerLetters, digits, symbols}
	all := upperLetters + lowerLetters + digits + symbols
	result := make([]byte, generatedPasswordLen)
	for i := range result {
		set := all
		if i < len(classes) {
			set = classes[i]
		}
		c, err := pick(set)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		result[i] = c
	}
	// Fisher-Yates with crypto/rand so the class order is not predictable.
	for i := len(result) - 1; i >= 1; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("shuffle: %w", err)
		}
		j := int(n.Int64())
		result[i], result[j] = result[j], result[i]
	}
	return string(result), nil
}
