package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashRoundTrip(t *testing.T) {
	hasher := NewPasswordHasher(4)

	hash, err := hasher.Hash("Passw0rd!")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", hash)
	assert.True(t, hasher.Verify("Passw0rd!", hash))
}

func TestVerifyWrongPassword(t *testing.T) {
	hasher := NewPasswordHasher(4)

	hash, err := hasher.Hash("Passw0rd!")
	require.NoError(t, err)
	assert.False(t, hasher.Verify("Passw0rd", hash))
	assert.False(t, hasher.Verify("", hash))
}

func TestHashesAreSalted(t *testing.T) {
	hasher := NewPasswordHasher(4)

	first, err := hasher.Hash("Passw0rd!")
	require.NoError(t, err)
	second, err := hasher.Hash("Passw0rd!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("Passw0rd!", first))
	assert.True(t, hasher.Verify("Passw0rd!", second))
}

func TestVerifyEmptyStoredHash(t *testing.T) {
	hasher := NewPasswordHasher(4)

	assert.False(t, hasher.Verify("Passw0rd!", ""))
	assert.False(t, hasher.Verify("Passw0rd!", "   "))
	assert.False(t, hasher.Verify("", ""))
}

func TestVerifyGarbageStoredHash(t *testing.T) {
	hasher := NewPasswordHasher(4)

	assert.False(t, hasher.Verify("Passw0rd!", "not-a-bcrypt-hash"))
}
