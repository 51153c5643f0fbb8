package pickupcode

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Shape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code, err := Generate()
		require.NoError(t, err)
		assert.True(t, Valid(code), "code %q", code)
		seen[code] = struct{}{}
	}
	// 200 draws from 10^8 should essentially never collide
	assert.Greater(t, len(seen), 195)
}

func TestGenerateFrom_ZeroPadded(t *testing.T) {
	// all-zero entropy yields 0, which must still render as eight digits
	code, err := GenerateFrom(bytes.NewReader(make([]byte, 64)))
	require.NoError(t, err)
	assert.Equal(t, "00000000", code)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("no entropy") }

func TestGenerateFrom_ReaderError(t *testing.T) {
	_, err := GenerateFrom(failingReader{})
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	assert.True(t, Valid("01234567"))
	assert.False(t, Valid("1234567"))
	assert.False(t, Valid("123456789"))
	assert.False(t, Valid("1234567a"))
	assert.False(t, Valid(""))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("00001234", "00001234"))
	assert.False(t, Equal("00001234", "00001235"))
	assert.False(t, Equal("00001234", "1234"))
}
