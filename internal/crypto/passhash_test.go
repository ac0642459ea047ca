package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandBytes(t *testing.T) {
	t.Parallel()

	a, err := RandBytes(SaltLen)
	require.NoError(t, err)
	require.Len(t, a, SaltLen)

	b, err := RandBytes(SaltLen)
	require.NoError(t, err)
	require.False(t, bytes.Equal(a, b), "two salts should not collide")
	require.False(t, bytes.Equal(a, make([]byte, SaltLen)), "salt should not be all zeros")
}

func TestHashPassword_Deterministic(t *testing.T) {
	t.Parallel()

	pw := []byte("p@ssw0rd")
	salt := []byte("NaCl-16-bytes-ok")

	h1 := HashPassword(pw, salt)
	h2 := HashPassword(pw, salt)
	require.NotEmpty(t, h1)
	require.Equal(t, h1, h2, "same password and salt must hash identically")

	require.NotEqual(t, h1, HashPassword(pw, []byte("another-salt----")))
	require.NotEqual(t, h1, HashPassword([]byte("p@ssw0rd!"), salt))
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	pw := []byte("correct horse battery staple")
	salt, err := RandBytes(SaltLen)
	require.NoError(t, err)
	hash := HashPassword(pw, salt)

	require.True(t, VerifyPassword(pw, salt, hash))
	require.False(t, VerifyPassword([]byte("wrong"), salt, hash))
	require.False(t, VerifyPassword(pw, []byte("wrong-salt-wrong"), hash))
	require.False(t, VerifyPassword(nil, salt, hash))
	require.False(t, VerifyPassword(pw, salt, hash[:len(hash)-1]))
}
