package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cheapParams = HashParams{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashPassword_Format(t *testing.T) {
	encoded, err := HashPassword("testpass123")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=65536,t=3,p=2$"))
	assert.NotContains(t, encoded, "testpass123")

	ok, err := ComparePassword("testpass123", encoded)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestComparePassword(t *testing.T) {
	encoded, err := hashWithParams("s3cret", cheapParams)
	require.NoError(t, err)

	ok, err := ComparePassword("s3cret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePassword("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := hashWithParams("same", cheapParams)
	require.NoError(t, err)
	b, err := hashWithParams("same", cheapParams)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestComparePassword_InvalidHash(t *testing.T) {
	for _, h := range []string{"", "plain", "$bcrypt$x$y$z$w", "$argon2id$v=19$bogus$c2FsdA$aGFzaA"} {
		_, err := ComparePassword("x", h)
		assert.ErrorIs(t, err, ErrInvalidHash, h)
	}
}
