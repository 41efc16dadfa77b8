package security

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestSealOpen(t *testing.T) {
	plaintext := []byte("super secret token ghp_abc")

	sealed, err := Seal(plaintext, "passphrase")
	if err != nil {
		t.Fatal(err)
	}
	if sealed == string(plaintext) {
		t.Fatal("sealed should differ from plaintext")
	}

	opened, err := Open(sealed, "passphrase")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plaintext, opened) {
		t.Fatalf("expected %q, got %q", plaintext, opened)
	}
}

func TestOpenWrongPassphrase(t *testing.T) {
	sealed, err := Seal([]byte("secret"), "one")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Open(sealed, "two"); err == nil {
		t.Fatal("expected decryption to fail with wrong passphrase")
	}
	if _, err := Open("garbage", "one"); err == nil {
		t.Fatal("expected malformed input to fail")
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := []byte("fixed-salt-value")
	if !bytes.Equal(DeriveKey("password", salt), DeriveKey("password", salt)) {
		t.Fatal("same password and salt should produce same key")
	}
}

func TestKeyStoreUsesKeyring(t *testing.T) {
	keyring.MockInit()
	ks, err := NewKeyStore(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}

	if err := ks.Set(SecretGatewayToken, "ghp_token"); err != nil {
		t.Fatal(err)
	}
	got, err := ks.Resolve(SecretGatewayToken, KeyringPlaceholder)
	if err != nil {
		t.Fatal(err)
	}
	if got != "ghp_token" {
		t.Fatalf("expected ghp_token, got %q", got)
	}

	plain, err := ks.Resolve(SecretGatewayToken, "inline")
	if err != nil || plain != "inline" {
		t.Fatalf("non-placeholder values pass through, got %q %v", plain, err)
	}
}

func TestKeyStoreFallsBackToVault(t *testing.T) {
	keyring.MockInitWithError(errors.New("no keychain"))
	dir := t.TempDir()
	ks, err := NewKeyStore(dir, "vault-pass")
	if err != nil {
		t.Fatal(err)
	}

	if err := ks.Set(SecretLLMKey, "sk-test"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, vaultFile)); err != nil {
		t.Fatalf("vault file not written: %v", err)
	}

	got, err := ks.Get(SecretLLMKey)
	if err != nil {
		t.Fatal(err)
	}
	if got != "sk-test" {
		t.Fatalf("expected sk-test, got %q", got)
	}

	if err := ks.Delete(SecretLLMKey); err != nil {
		t.Fatal(err)
	}
	if _, err := ks.Get(SecretLLMKey); !errors.Is(err, ErrSecretNotFound) {
		t.Fatalf("expected ErrSecretNotFound, got %v", err)
	}
}

func TestMaskKey(t *testing.T) {
	if MaskKey("short") != "****" {
		t.Fatal("short keys should be fully masked")
	}
	if got := MaskKey("sk-1234567890abcd"); got != "sk-...abcd" {
		t.Fatalf("unexpected mask %q", got)
	}
}
