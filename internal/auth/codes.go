package auth

import (
	"strings"

	"github.com/charlesng35/soiree/pkg/crypto"
)

const (
	// CodeAlphabet omits glyphs that are easy to confuse when typed: 0, 1, I and O.
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// CodeLength is the number of symbols in an access code.
	CodeLength = 6
)

// GenerateCode draws a fresh access code. Uniqueness is enforced by the store;
// callers retry on collision.
func GenerateCode() (string, error) {
	return crypto.RandomString(CodeAlphabet, CodeLength)
}

// NormalizeCode trims and upper-cases user input before lookup.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
