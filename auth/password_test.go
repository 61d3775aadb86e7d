package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "argon2id$t=2,m=19456,p=1$"))

	ok, err := CheckPassword("correct horse battery", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword("correct horse batterz", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCheckPasswordRejectsUnknownFormats(t *testing.T) {
	for _, encoded := range []string{
		"",
		"bcrypt$x$y$z",
		"argon2id$t=2,m=19456$c2FsdA$a2V5",
		"argon2id$t=2,m=19456,p=1,q=3$c2FsdA$a2V5",
		"argon2id$t=2,m=19456,p=1$!!$a2V5",
		"argon2id$t=2,m=19456,p=1$c2FsdA$",
		"argon2id$t=2,m=19456,p=256$c2FsdA$a2V5",
		"argon2id$t=2,m=19456,p=257$c2FsdA$a2V5",
	} {
		_, err := CheckPassword("whatever", encoded)
		assert.ErrorIs(t, err, ErrUnrecognizedHash, encoded)
	}
}

func TestParseArgon2idConfigBounds(t *testing.T) {
	cfg, err := parseArgon2idConfig("t=3,m=65536,p=255")
	assert.NoError(t, err)
	assert.Equal(t, argon2idConfig{Time: 3, Memory: 65536, Threads: 255}, cfg)

	_, err = parseArgon2idConfig("t=3,m=65536,p=257")
	assert.ErrorIs(t, err, ErrUnrecognizedHash)

	_, err = parseArgon2idConfig("t=4294967296,m=65536,p=1")
	assert.ErrorIs(t, err, ErrUnrecognizedHash)
}
