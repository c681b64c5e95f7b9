package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("p1")
	require.NoError(t, err)

	assert.NotEqual(t, "p1", hash)
	assert.True(t, CheckPassword(hash, "p1"))
	assert.False(t, CheckPassword(hash, "p2"))
}

func TestHashPassword_Salted(t *testing.T) {
	first, err := HashPassword("p1")
	require.NoError(t, err)
	second, err := HashPassword("p1")
	require.NoError(t, err)

	// Random salt makes identical passwords hash differently
	assert.NotEqual(t, first, second)
	assert.True(t, CheckPassword(first, "p1"))
	assert.True(t, CheckPassword(second, "p1"))
}
