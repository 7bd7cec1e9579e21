package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomStringUsesAlphabet(t *testing.T) {
	const alphabet = "XYZ7"

	for i := 0; i < 200; i++ {
		value, err := RandomString(alphabet, 6)
		require.NoError(t, err)
		require.Len(t, value, 6)
		for _, r := range value {
			require.True(t, strings.ContainsRune(alphabet, r), "unexpected symbol %q", r)
		}
	}
}

func TestRandomStringRejectsEmptyAlphabet(t *testing.T) {
	_, err := RandomString("", 6)
	require.ErrorIs(t, err, ErrEmptyAlphabet)
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	other, err := GenerateToken(32)
	require.NoError(t, err)
	require.NotEqual(t, token, other)
}

func TestEqual(t *testing.T) {
	require.True(t, Equal("token", "token"))
	require.False(t, Equal("token", "tokem"))
}
