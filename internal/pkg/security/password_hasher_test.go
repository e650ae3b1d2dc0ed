package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.NoError(t, h.CheckPasswordHash("s3cret-pass", hash))
	assert.ErrorIs(t, h.CheckPasswordHash("wrong-pass", hash), ErrInvalidCredentials)
}

func TestBcryptHasherRejectsEmptyPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	_, err := h.HashPassword("")
	assert.Error(t, err)
}

func TestBcryptHasherRejectsPlaintextDigest(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	// a stored plaintext value never verifies
	assert.Error(t, h.CheckPasswordHash("plain", "plain"))
}

func TestNewBcryptHasherDefaultsCost(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
}
