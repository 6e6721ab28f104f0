package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lostfound/internal/auth"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := auth.HashPassword("Sup3rSecret")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "Sup3rSecret", hash)

	assert.True(t, auth.CheckPassword("Sup3rSecret", hash))
	assert.False(t, auth.CheckPassword("wrong-password", hash))
}

func TestHashPasswordEmpty(t *testing.T) {
	_, err := auth.HashPassword("")
	assert.Error(t, err)
}
