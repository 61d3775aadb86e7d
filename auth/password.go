package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	algorithmArgon2id = "argon2id"
	saltLength        = 16
	keyLength         = 32
)

var ErrUnrecognizedHash = errors.New("unrecognized password hash")

type argon2idConfig struct {
	Time    uint32
	Memory  uint32
	Threads uint8
}

// Follows the OWASP argon2id minimums.
var defaultArgon2id = argon2idConfig{Time: 2, Memory: 19 * 1024, Threads: 1}

func (c argon2idConfig) String() string {
	return fmt.Sprintf("t=%d,m=%d,p=%d", c.Time, c.Memory, c.Threads)
}

func parseArgon2idConfig(s string) (argon2idConfig, error) {
	var cfg argon2idConfig
	for _, part := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return cfg, ErrUnrecognizedHash
		}
		bits := 32
		if key == "p" {
			bits = 8
		}
		n, err := strconv.ParseUint(value, 10, bits)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s", ErrUnrecognizedHash, part)
		}
		switch key {
		case "t":
			cfg.Time = uint32(n)
		case "m":
			cfg.Memory = uint32(n)
		case "p":
			cfg.Threads = uint8(n)
		default:
			return cfg, fmt.Errorf("%w: unknown parameter %s", ErrUnrecognizedHash, key)
		}
	}
	if cfg.Time == 0 || cfg.Memory == 0 || cfg.Threads == 0 {
		return cfg, ErrUnrecognizedHash
	}
	return cfg, nil
}

// HashPassword returns "argon2id$t=..,m=..,p=..$salt$hash" with a fresh
// random salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	cfg := defaultArgon2id
	key := argon2.IDKey([]byte(password), salt, cfg.Time, cfg.Memory, cfg.Threads, keyLength)

	return strings.Join([]string{
		algorithmArgon2id,
		cfg.String(),
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	}, "$"), nil
}

// CheckPassword compares in constant time.
func CheckPassword(password, encoded string) (bool, error) {
	pieces := strings.SplitN(encoded, "$", 4)
	if len(pieces) != 4 || pieces[0] != algorithmArgon2id {
		return false, ErrUnrecognizedHash
	}

	cfg, err := parseArgon2idConfig(pieces[1])
	if err != nil {
		return false, err
	}
	salt, err := base64.RawStdEncoding.DecodeString(pieces[2])
	if err != nil {
		return false, fmt.Errorf("%w: salt", ErrUnrecognizedHash)
	}
	want, err := base64.RawStdEncoding.DecodeString(pieces[3])
	if err != nil || len(want) == 0 {
		return false, fmt.Errorf("%w: key", ErrUnrecognizedHash)
	}

	got := argon2.IDKey([]byte(password), salt, cfg.Time, cfg.Memory, cfg.Threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
