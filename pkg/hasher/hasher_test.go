package hasher

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("sunshine")
	require.NoError(t, err)

	assert.NotEqual(t, "sunshine", hash)
	assert.True(t, PasswordCorrect("sunshine", hash))
	assert.False(t, PasswordCorrect("moonlight", hash))
	assert.False(t, PasswordCorrect("sunshine", "not-a-hash"))
	assert.False(t, PasswordCorrect("", hash))
}

func TestHashPassword_Invalid(t *testing.T) {
	_, err := HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)

	_, err = HashPassword(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(32)
	require.NoError(t, err)
	b, err := GenerateToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	raw, err := base64.URLEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	_, err = GenerateToken(0)
	assert.Error(t, err)
}
