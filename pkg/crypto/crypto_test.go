package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateCodeLengthAndAlphabet(t *testing.T) {
	code, err := GenerateCode(32)
	require.NoError(t, err)
	require.Len(t, code, 32)

	for _, r := range code {
		require.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected character %q", r)
	}
}

func TestGenerateCodeRejectsNonPositiveLength(t *testing.T) {
	_, err := GenerateCode(0)
	require.Error(t, err)

	_, err = GenerateCode(-4)
	require.Error(t, err)
}

func TestGenerateCodeIsNotConstant(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 16; i++ {
		code, err := GenerateCode(16)
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	require.Greater(t, len(seen), 1)
}
