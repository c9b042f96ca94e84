package keycrypt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *Cipher {
	t.Helper()
	c, err := NewCipher(strings.Repeat("ab", 32))
	require.NoError(t, err)
	return c
}

func TestSealOpenRoundtrip(t *testing.T) {
	c := newTestCipher(t)

	sealed, err := c.Seal([]byte("control-key-material"))
	require.NoError(t, err)
	require.NotContains(t, sealed, "control-key-material")

	opened, err := c.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, []byte("control-key-material"), opened)
}

func TestSealIsNonDeterministic(t *testing.T) {
	c := newTestCipher(t)

	first, err := c.Seal([]byte("same plaintext"))
	require.NoError(t, err)
	second, err := c.Seal([]byte("same plaintext"))
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestNewCipherRejectsBadKeys(t *testing.T) {
	_, err := NewCipher("not hex at all")
	require.Error(t, err)

	_, err = NewCipher("abcd")
	require.Error(t, err)

	_, err = NewCipher(strings.Repeat("ab", 33))
	require.Error(t, err)
}

func TestOpenRejectsTampering(t *testing.T) {
	c := newTestCipher(t)

	sealed, err := c.Seal([]byte("secret"))
	require.NoError(t, err)

	// Flip the final hex digit of the auth tag.
	tail := sealed[len(sealed)-1]
	flipped := "0"
	if tail == '0' {
		flipped = "1"
	}
	_, err = c.Open(sealed[:len(sealed)-1] + flipped)
	require.Error(t, err)
}

func TestOpenRejectsMalformedInput(t *testing.T) {
	c := newTestCipher(t)

	_, err := c.Open("zzzz")
	require.Error(t, err)

	_, err = c.Open("abcd")
	require.Error(t, err)
}

func TestOpenWithWrongKeyFails(t *testing.T) {
	c := newTestCipher(t)
	other, err := NewCipher(strings.Repeat("cd", 32))
	require.NoError(t, err)

	sealed, err := c.Seal([]byte("secret"))
	require.NoError(t, err)

	_, err = other.Open(sealed)
	require.Error(t, err)
}

func TestZeroScrubsBuffer(t *testing.T) {
	buf := []byte{1, 2, 3, 4}
	Zero(buf)
	require.Equal(t, []byte{0, 0, 0, 0}, buf)
}
