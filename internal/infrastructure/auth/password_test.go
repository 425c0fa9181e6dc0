package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, h.Verify(hash, "correct horse"))
	assert.False(t, h.Verify(hash, "wrong"))
	assert.False(t, h.Verify("", ""))
	assert.False(t, h.Verify("not-a-hash", "correct horse"))
}

func TestNewPasswordHasher_DefaultCost(t *testing.T) {
	assert.Equal(t, bcryptCost, NewPasswordHasher(0).cost)
}
