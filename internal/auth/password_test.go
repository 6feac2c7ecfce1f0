package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	h := NewPasswordHasher(4) // min cost keeps the test fast

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, h.Verify("secret1", hash))
	assert.False(t, h.Verify("secret2", hash))
}

func TestHashSaltsIndependently(t *testing.T) {
	h := NewPasswordHasher(4)

	h1, err := h.Hash("same-password")
	require.NoError(t, err)
	h2, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2, "two hashes of the same plaintext must differ")
	assert.True(t, h.Verify("same-password", h1))
	assert.True(t, h.Verify("same-password", h2))
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewPasswordHasher(4)

	assert.False(t, h.Verify("anything", ""))
	assert.False(t, h.Verify("anything", "not-a-bcrypt-hash"))
}

func TestHashNeverReturnsPlaintext(t *testing.T) {
	h := NewPasswordHasher(4)

	hash, err := h.Hash("hunter22")
	require.NoError(t, err)
	assert.NotContains(t, hash, "hunter22")
}
