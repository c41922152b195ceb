package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopforge/account-service/internal/config"
)

func testParams() config.PasswordHashConfig {
	return config.PasswordHashConfig{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestHashAndVerify(t *testing.T) {
	hasher, err := NewArgon2idHasher(testParams())
	require.NoError(t, err)

	hash, err := hasher.Hash("s3cret password")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	ok, err := hasher.Verify("s3cret password", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashesAreSalted(t *testing.T) {
	hasher, err := NewArgon2idHasher(testParams())
	require.NoError(t, err)

	h1, err := hasher.Hash("same password")
	require.NoError(t, err)
	h2, err := hasher.Hash("same password")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestVerifyUsesParamsFromHash(t *testing.T) {
	weak, err := NewArgon2idHasher(testParams())
	require.NoError(t, err)
	hash, err := weak.Hash("password")
	require.NoError(t, err)

	// A hasher configured with different parameters still verifies.
	params := testParams()
	params.Iterations = 2
	strong, err := NewArgon2idHasher(params)
	require.NoError(t, err)

	ok, err := strong.Verify("password", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyMalformedHash(t *testing.T) {
	hasher, err := NewArgon2idHasher(testParams())
	require.NoError(t, err)

	_, err = hasher.Verify("password", "$bcrypt$nonsense")
	assert.Error(t, err)
}

func TestIncompleteParamsRejected(t *testing.T) {
	params := testParams()
	params.Memory = 0
	_, err := NewArgon2idHasher(params)
	assert.Error(t, err)
}
