package auth

import (
	"errors"
	"strings"
	"testing"
)

func TestHashAdminKey_Format(t *testing.T) {
	t.Parallel()

	hash, err := HashAdminKey("super-secret-admin-key")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash should use PHC argon2id format, got %q", hash)
	}
	if parts := strings.Split(hash, "$"); len(parts) != 6 {
		t.Errorf("hash has %d parts, want 6", len(parts))
	}
}

func TestVerifyAdminKey_Roundtrip(t *testing.T) {
	t.Parallel()

	key := "super-secret-admin-key"
	hash, err := HashAdminKey(key)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	match, err := VerifyAdminKey(key, hash)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !match {
		t.Error("correct key should verify")
	}

	match, err = VerifyAdminKey("wrong-key", hash)
	if err != nil {
		t.Fatalf("verify wrong key: %v", err)
	}
	if match {
		t.Error("wrong key should not verify")
	}
}

func TestHashAdminKey_UniqueSalts(t *testing.T) {
	t.Parallel()

	h1, err := HashAdminKey("same-key")
	if err != nil {
		t.Fatalf("first hash: %v", err)
	}
	h2, err := HashAdminKey("same-key")
	if err != nil {
		t.Fatalf("second hash: %v", err)
	}

	if h1 == h2 {
		t.Error("hashes of the same key should differ by salt")
	}
}

func TestVerifyAdminKey_InvalidHash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not a hash", "plaintext"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"too few parts", "$argon2id$v=19$m=65536,t=3,p=4"},
		{"bad salt encoding", "$argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := VerifyAdminKey("key", tt.hash); !errors.Is(err, ErrInvalidHash) {
				t.Errorf("err = %v, want ErrInvalidHash", err)
			}
		})
	}
}

func TestVerifyAdminKey_IncompatibleVersion(t *testing.T) {
	t.Parallel()

	hash := "$argon2id$v=18$m=65536,t=3,p=4$c2FsdA$aGFzaA"
	if _, err := VerifyAdminKey("key", hash); !errors.Is(err, ErrIncompatibleVersion) {
		t.Errorf("err = %v, want ErrIncompatibleVersion", err)
	}
}
