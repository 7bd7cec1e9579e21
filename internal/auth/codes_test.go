package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateCodeRoundTrip(t *testing.T) {
	for i := 0; i < 500; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, CodeLength)
		for _, r := range code {
			require.True(t, strings.ContainsRune(CodeAlphabet, r), "unexpected symbol %q in %s", r, code)
		}
		require.Equal(t, code, NormalizeCode(code))
	}
}

func TestCodeAlphabetExcludesAmbiguousGlyphs(t *testing.T) {
	require.NotContains(t, CodeAlphabet, "0")
	require.NotContains(t, CodeAlphabet, "1")
	require.NotContains(t, CodeAlphabet, "I")
	require.NotContains(t, CodeAlphabet, "O")
}

func TestNormalizeCode(t *testing.T) {
	require.Equal(t, "ABC234", NormalizeCode("  abc234\n"))
	require.Empty(t, NormalizeCode("   "))
}
