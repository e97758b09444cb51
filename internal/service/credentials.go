package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

const passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789-_"

type usernameChecker interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
}

// credentialMinter produces login details for newly approved students.
type credentialMinter struct {
	users          usernameChecker
	passwordLength int
	attempts       int
	randInt        func(max int64) (int64, error)
}

func newCredentialMinter(users usernameChecker, passwordLength int) *credentialMinter {
	if passwordLength < 8 {
		passwordLength = 10
	}
	return &credentialMinter{users: users, passwordLength: passwordLength, attempts: 5, randInt: cryptoInt}
}

func cryptoInt(max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}

// Username builds firstname.lastname followed by four digits, retrying on collisions.
func (m *credentialMinter) Username(ctx context.Context, fullName string) (string, error) {
	base := usernameBase(fullName)
	for i := 0; i < m.attempts; i++ {
		n, err := m.randInt(10000)
		if err != nil {
			return "", fmt.Errorf("generate username suffix: %w", err)
		}
		candidate := fmt.Sprintf("%s%04d", base, n)
		exists, err := m.users.UsernameExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check username: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no free username for %q after %d attempts", base, m.attempts)
}

// Password returns a random URL-safe password.
func (m *credentialMinter) Password() (string, error) {
	var b strings.Builder
	b.Grow(m.passwordLength)
	for i := 0; i < m.passwordLength; i++ {
		n, err := m.randInt(int64(len(passwordAlphabet)))
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		b.WriteByte(passwordAlphabet[n])
	}
	return b.String(), nil
}

func usernameBase(fullName string) string {
	parts := make([]string, 0, 2)
	for _, word := range strings.Fields(fullName) {
		var b strings.Builder
		for _, r := range strings.ToLower(word) {
			if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			parts = append(parts, b.String())
		}
	}
	switch len(parts) {
	case 0:
		return "student"
	case 1:
		return parts[0]
	default:
		return parts[0] + "." + parts[len(parts)-1]
	}
}
