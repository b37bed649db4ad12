package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("rahasia-kuat")
	require.NoError(t, err)

	ok, err := VerifyPassword("rahasia-kuat", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("salah", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("password123")
	require.NoError(t, err)
	second, err := HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, string(first), string(second))
}

func TestVerifyPasswordRejectsGarbageHash(t *testing.T) {
	_, err := VerifyPassword("anything", []byte("not-an-argon2-hash"))
	assert.Error(t, err)
}

// The encoded form carries salt and hash as separate $-delimited fields; the
// verifier must split them apart rather than treat them as one token.
func TestVerifyPasswordParsesEncodedFields(t *testing.T) {
	hash, err := HashPassword("kata-sandi-panjang")
	require.NoError(t, err)
	require.Len(t, strings.Split(string(hash), "$"), 6)

	ok, err := VerifyPassword("kata-sandi-panjang", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	params := Argon2Params{Time: 1, Memory: 16 * 1024, Threads: 1, KeyLen: 16, SaltLen: 8}
	custom, err := HashPasswordWithParams("lain-lagi", params)
	require.NoError(t, err)

	ok, err = VerifyPassword("lain-lagi", custom)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("bukan-itu", custom)
	require.NoError(t, err)
	assert.False(t, ok)
}
