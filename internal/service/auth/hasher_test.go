package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_BcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := BcryptHasher{}

	t.Run("hash and compare", func(t *testing.T) {
		hash, err := hasher.Hash("correct-horse-battery-staple")
		require.NoError(t, err)
		require.NotEmpty(t, hash)

		require.NoError(t, hasher.Compare(hash, "correct-horse-battery-staple"))
		require.Error(t, hasher.Compare(hash, "wrong-password"))
	})

	t.Run("hashes are salted", func(t *testing.T) {
		first, err := hasher.Hash("password")
		require.NoError(t, err)
		second, err := hasher.Hash("password")
		require.NoError(t, err)

		require.NotEqual(t, first, second)
	})

	t.Run("long passwords not truncated", func(t *testing.T) {
		// bcrypt alone ignores everything past 72 bytes, the sha256
		// prehash must keep long passwords distinct
		base := strings.Repeat("x", 72)

		hash, err := hasher.Hash(base + "first")
		require.NoError(t, err)

		require.NoError(t, hasher.Compare(hash, base+"first"))
		require.Error(t, hasher.Compare(hash, base+"second"))
	})
}
