package crypto

import (
	"strings"
	"testing"
)

const testKey = "0123456789abcdef0123456789abcdef"

func TestNew_KeyLength(t *testing.T) {
	if _, err := New("short"); err != ErrInvalidKey {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := New(testKey); err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	c, err := New(testKey)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	encoded, err := c.Encrypt("123-45-6789")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	ivHex, ctHex, ok := strings.Cut(encoded, ":")
	if !ok {
		t.Fatalf("missing iv separator: %q", encoded)
	}
	if len(ivHex) != 32 {
		t.Fatalf("iv should be 16 bytes hex-encoded, got %d chars", len(ivHex))
	}
	if len(ctHex) == 0 || len(ctHex)%32 != 0 {
		t.Fatalf("ciphertext not block-aligned: %d chars", len(ctHex))
	}

	plain, err := c.Decrypt(encoded)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plain != "123-45-6789" {
		t.Fatalf("round trip mismatch: %q", plain)
	}
}

func TestEncrypt_FreshIV(t *testing.T) {
	c, _ := New(testKey)
	a, _ := c.Encrypt("123-45-6789")
	b, _ := c.Encrypt("123-45-6789")
	if a == b {
		t.Fatalf("two encryptions of the same plaintext must differ")
	}
}

func TestDecrypt_Malformed(t *testing.T) {
	c, _ := New(testKey)
	for _, bad := range []string{
		"",
		"no-separator",
		"zzzz:abcd",
		"00112233445566778899aabbccddeeff:",
		"00112233445566778899aabbccddeeff:abcd", // not block aligned
	} {
		if _, err := c.Decrypt(bad); err == nil {
			t.Errorf("Decrypt(%q) should fail", bad)
		}
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	a, _ := New(testKey)
	b, _ := New("fedcba9876543210fedcba9876543210")

	encoded, err := a.Encrypt("123-45-6789")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if plain, err := b.Decrypt(encoded); err == nil && plain == "123-45-6789" {
		t.Fatalf("decrypting with the wrong key must not recover the plaintext")
	}
}
