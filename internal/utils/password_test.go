package utils_test

import (
	"strings"
	"testing"

	"github.com/echopind/echopind_backend/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	h := utils.NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", hash)
	assert.True(t, h.Verify("secret1", hash))
	assert.False(t, h.Verify("secret2", hash))
}

func TestPasswordHasher_SaltsEachHash(t *testing.T) {
	h := utils.NewPasswordHasher(bcrypt.MinCost)

	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_CostFallback(t *testing.T) {
	assert.Equal(t, utils.DefaultPasswordCost, utils.NewPasswordHasher(0).Cost())
	assert.Equal(t, utils.DefaultPasswordCost, utils.NewPasswordHasher(99).Cost())
	assert.Equal(t, 10, utils.NewPasswordHasher(10).Cost())
}

func TestPasswordHasher_RejectsOverlongPassword(t *testing.T) {
	h := utils.NewPasswordHasher(bcrypt.MinCost)
	_, err := h.Hash(strings.Repeat("a", 73))
	assert.Error(t, err)
}

func TestPasswordHasher_VerifyDummyAlwaysFails(t *testing.T) {
	h := utils.NewPasswordHasher(bcrypt.MinCost)
	assert.False(t, h.VerifyDummy("echopind-dummy-password"))
	assert.False(t, h.VerifyDummy("anything"))
}

func TestGenerateSecureRandomString(t *testing.T) {
	a, err := utils.GenerateSecureRandomString(32)
	require.NoError(t, err)
	b, err := utils.GenerateSecureRandomString(32)
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)

	_, err = utils.GenerateSecureRandomString(0)
	assert.Error(t, err)
}
