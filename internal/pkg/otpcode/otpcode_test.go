package otpcode

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumeric_RangeAndWidth(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := Numeric()
		require.NoError(t, err)
		require.Len(t, code, Length)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
		assert.NotEqual(t, byte('0'), code[0])
	}
}

func TestMagicLink_LengthAndAlphabet(t *testing.T) {
	for i := 0; i < 1000; i++ {
		token, err := MagicLink()
		require.NoError(t, err)
		require.Len(t, token, Length)
		for _, c := range token {
			assert.True(t, strings.ContainsRune(alphabet, c), "unexpected character %q", c)
		}
	}
}

func TestGenerate_Dispatch(t *testing.T) {
	code, err := Generate(false)
	require.NoError(t, err)
	_, err = strconv.Atoi(code)
	assert.NoError(t, err, "numeric mode must be all digits")

	token, err := Generate(true)
	require.NoError(t, err)
	require.Len(t, token, Length)
}

func TestMagicLink_NotConstant(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		token, err := MagicLink()
		require.NoError(t, err)
		seen[token] = true
	}
	assert.Greater(t, len(seen), 1)
}
