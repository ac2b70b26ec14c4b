package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	user := &User{Password: "secret-password"}
	require.NoError(t, user.HashPassword())

	// The transient field is cleared and the hash is not the plain text.
	assert.Empty(t, user.Password)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret-password", user.PasswordHash)

	assert.NoError(t, user.CheckPassword("secret-password"))
	assert.Error(t, user.CheckPassword("wrong-password"))
}

func TestHashPasswordEmpty(t *testing.T) {
	user := &User{}
	require.NoError(t, user.HashPassword())
	assert.Empty(t, user.PasswordHash)
}
