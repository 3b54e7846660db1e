package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for the admin key hash. Admin requests are rare,
// so the cost leans toward slow.
const (
	adminKeyTime    = 3
	adminKeyMemory  = 64 * 1024 // KiB
	adminKeyThreads = 4
	adminKeyLen     = 32
	adminKeySaltLen = 16
)

var (
	// ErrInvalidHash means the configured value is not a PHC argon2id string.
	ErrInvalidHash = errors.New("invalid admin key hash")
	// ErrIncompatibleVersion means the hash was produced by an argon2
	// version this build does not implement.
	ErrIncompatibleVersion = errors.New("incompatible argon2 version")
)

// adminKeyHash is a decoded PHC argon2id string.
type adminKeyHash struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	hash    []byte
}

// HashAdminKey derives the PHC-format argon2id hash that operators put
// in ADMIN_API_KEY_HASH. Only the hash is configured on the service;
// the key itself never is.
func HashAdminKey(key string) (string, error) {
	salt := make([]byte, adminKeySaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(key), salt, adminKeyTime, adminKeyMemory, adminKeyThreads, adminKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		adminKeyMemory, adminKeyTime, adminKeyThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyAdminKey reports whether the presented key matches the
// configured hash. Cost parameters come from the hash string itself, so
// a rotated hash can change them without a code change. The comparison
// is constant time.
func VerifyAdminKey(key, encodedHash string) (bool, error) {
	decoded, err := decodeAdminKeyHash(encodedHash)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(key), decoded.salt, decoded.time, decoded.memory, decoded.threads, uint32(len(decoded.hash)))

	return subtle.ConstantTimeCompare(computed, decoded.hash) == 1, nil
}

// decodeAdminKeyHash parses $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>.
func decodeAdminKeyHash(encoded string) (*adminKeyHash, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, ErrInvalidHash
	}
	if version != argon2.Version {
		return nil, ErrIncompatibleVersion
	}

	decoded := &adminKeyHash{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &decoded.memory, &decoded.time, &decoded.threads); err != nil {
		return nil, ErrInvalidHash
	}

	var err error
	if decoded.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, ErrInvalidHash
	}
	if decoded.hash, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, ErrInvalidHash
	}

	return decoded, nil
}
