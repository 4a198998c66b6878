package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"), "hash must be bcrypt")
	assert.True(t, CheckPassword("correct horse battery staple", hash))
	assert.False(t, CheckPassword("wrong password", hash))
	assert.False(t, CheckPassword("correct horse battery staple", "not-a-hash"))
}

func TestRandomTokenIsURLSafeAndUnique(t *testing.T) {
	a, err := RandomToken(32)
	require.NoError(t, err)
	b, err := RandomToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	// Raw URL encoding: token goes into a reset link query parameter as-is.
	assert.NotContains(t, a, "+")
	assert.NotContains(t, a, "/")
	assert.NotContains(t, a, "=")
}

func TestRandomInviteCode(t *testing.T) {
	code, err := RandomInviteCode()
	require.NoError(t, err)
	assert.Len(t, code, 12)
	assert.Regexp(t, "^[0-9a-f]+$", code)
}
