// Package security verifies stored credentials across every hash era the
// database has accumulated and produces argon2id hashes for new ones. The
// stored string is never decoded, only compared under the rules of the format
// its shape implies.
package security

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/lmorand/brasserie-backend/pkg/config"
	"golang.org/x/crypto/argon2"
)

// Format identifies the hash era a stored credential belongs to.
type Format string

const (
	FormatArgon2id Format = "argon2id"
	FormatMD5      Format = "md5"
	FormatSHA1     Format = "sha1"
	FormatSHA256   Format = "sha256"
	FormatPlain    Format = "plain"
	FormatUnknown  Format = "unknown"
)

// NeedsUpgrade reports whether a credential verified under this format must
// be re-hashed with argon2id. Every legacy login is an upgrade opportunity.
func (f Format) NeedsUpgrade() bool {
	switch f {
	case FormatMD5, FormatSHA1, FormatSHA256, FormatPlain:
		return true
	}
	return false
}

// hashScheme couples a shape detector with a verifier. Schemes are evaluated
// in fixed priority order and the first shape match wins, so the plaintext
// fallback must stay last.
type hashScheme struct {
	format  Format
	matches func(stored string) bool
	verify  func(plain, stored string) bool
}

var schemes = []hashScheme{
	{
		format:  FormatArgon2id,
		matches: func(stored string) bool { return strings.HasPrefix(stored, "$argon2id$") },
		verify:  verifyArgon2id,
	},
	{
		format:  FormatMD5,
		matches: func(stored string) bool { return isHexOfLen(stored, 32) },
		verify: func(plain, stored string) bool {
			sum := md5.Sum([]byte(plain))
			return hexEqual(sum[:], stored)
		},
	},
	{
		format:  FormatSHA1,
		matches: func(stored string) bool { return isHexOfLen(stored, 40) },
		verify: func(plain, stored string) bool {
			sum := sha1.Sum([]byte(plain))
			return hexEqual(sum[:], stored)
		},
	},
	{
		format:  FormatSHA256,
		matches: func(stored string) bool { return isHexOfLen(stored, 64) },
		verify: func(plain, stored string) bool {
			sum := sha256.Sum256([]byte(plain))
			return hexEqual(sum[:], stored)
		},
	},
	{
		format:  FormatPlain,
		matches: func(string) bool { return true },
		verify: func(plain, stored string) bool {
			return subtle.ConstantTimeCompare([]byte(plain), []byte(stored)) == 1
		},
	},
}

// VerifyCredential checks the plaintext against the stored credential and
// reports which format matched. An empty stored credential never verifies.
func VerifyCredential(plain, stored string) (bool, Format) {
	if stored == "" {
		return false, FormatUnknown
	}
	for _, s := range schemes {
		if s.matches(stored) {
			return s.verify(plain, stored), s.format
		}
	}
	return false, FormatUnknown
}

func isHexOfLen(s string, n int) bool {
	if len(s) != n {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

func hexEqual(sum []byte, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum)), []byte(strings.ToLower(stored))) == 1
}

// ErrInvalidHash signals a malformed argon2id hash string.
var ErrInvalidHash = fmt.Errorf("invalid argon2id hash")

// ArgonParams captures the argon2id parameters embedded into each hash
// string.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// HashPassword returns a formatted argon2id hash for the provided password.
// This is the only format ever written for new or upgraded credentials.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	params := paramsFromConfig(cfg)
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)

	encSalt := base64.RawStdEncoding.EncodeToString(salt)
	encHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", params.Memory, params.Time, params.Parallelism, encSalt, encHash), nil
}

func verifyArgon2id(password, encoded string) bool {
	params, salt, hash, err := decodeHash(encoded)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)
	return subtle.ConstantTimeCompare(hash, computed) == 1
}

func paramsFromConfig(cfg config.PasswordConfig) ArgonParams {
	threads := clampInt(cfg.ArgonParallelism, 1, 255)
	return ArgonParams{
		Memory:      clampUint32(cfg.ArgonMemoryKB, 8, 512*1024),
		Time:        clampUint32(cfg.ArgonTime, 1, 10),
		Parallelism: uint8(threads),
		SaltLen:     clampUint32(cfg.ArgonSaltLen, 8, 64),
		KeyLen:      clampUint32(cfg.ArgonKeyLen, 16, 64),
	}
}

func decodeHash(encoded string) (ArgonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	paramsPart := parts[3]
	var params ArgonParams
	for _, token := range strings.Split(paramsPart, ",") {
		keyValue := strings.SplitN(token, "=", 2)
		if len(keyValue) != 2 {
			return ArgonParams{}, nil, nil, ErrInvalidHash
		}
		key, value := keyValue[0], keyValue[1]
		switch key {
		case "m":
			if v, err := strconv.ParseUint(value, 10, 32); err == nil {
				params.Memory = uint32(v)
			} else {
				return ArgonParams{}, nil, nil, ErrInvalidHash
			}
		case "t":
			if v, err := strconv.ParseUint(value, 10, 32); err == nil {
				params.Time = uint32(v)
			} else {
				return ArgonParams{}, nil, nil, ErrInvalidHash
			}
		case "p":
			if v, err := strconv.ParseUint(value, 10, 8); err == nil {
				params.Parallelism = uint8(v)
			} else {
				return ArgonParams{}, nil, nil, ErrInvalidHash
			}
		}
	}

	// argon2.IDKey panics on zero time or parallelism, so a hash missing
	// any parameter is malformed rather than a candidate for comparison.
	if params.Memory == 0 || params.Time == 0 || params.Parallelism == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	params.SaltLen = uint32(len(salt))
	params.KeyLen = uint32(len(hash))

	return params, salt, hash, nil
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampUint32(value, min, max int) uint32 {
	return uint32(clampInt(value, min, max))
}
