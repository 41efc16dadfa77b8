package security

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "repolens"
	vaultFile      = "vault.enc"

	// KeyringPlaceholder marks a config secret that lives in the KeyStore.
	KeyringPlaceholder = "[keyring]"
)

// Secret names.
const (
	SecretLLMKey         = "llm_api_key"
	SecretFallbackLLMKey = "fallback_llm_api_key"
	SecretGatewayToken   = "gateway_token"
)

// ErrSecretNotFound is returned when neither the keychain nor the vault
// holds the requested secret.
var ErrSecretNotFound = errors.New("secret not found")

// KeyStore manages secure storage of API keys.
// Primary: OS keychain. Fallback: passphrase-encrypted vault file.
type KeyStore struct {
	passphrase string
	vaultPath  string
}

// NewKeyStore creates a key store whose vault lives in dir. passphrase
// may be empty, in which case only the OS keychain is used.
func NewKeyStore(dir, passphrase string) (*KeyStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &KeyStore{
		passphrase: passphrase,
		vaultPath:  filepath.Join(dir, vaultFile),
	}, nil
}

// Set stores a secret (tries keyring first, falls back to the vault).
func (ks *KeyStore) Set(name, value string) error {
	if err := keyring.Set(keyringService, name, value); err == nil {
		return nil
	}
	return ks.setInVault(name, value)
}

// Get retrieves a secret.
func (ks *KeyStore) Get(name string) (string, error) {
	if val, err := keyring.Get(keyringService, name); err == nil {
		return val, nil
	}
	return ks.getFromVault(name)
}

// Delete removes a secret from both stores.
func (ks *KeyStore) Delete(name string) error {
	_ = keyring.Delete(keyringService, name)
	return ks.deleteFromVault(name)
}

// Resolve returns value unless it is the keyring placeholder, in which
// case the named secret is looked up.
func (ks *KeyStore) Resolve(name, value string) (string, error) {
	if value != KeyringPlaceholder {
		return value, nil
	}
	return ks.Get(name)
}

// MaskKey returns a masked version of an API key for display.
func MaskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:3] + "..." + key[len(key)-4:]
}

func (ks *KeyStore) loadVault() (map[string]string, error) {
	data, err := os.ReadFile(ks.vaultPath)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}
	if ks.passphrase == "" {
		return nil, fmt.Errorf("vault passphrase not set")
	}

	plaintext, err := Open(string(data), ks.passphrase)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}

	var vault map[string]string
	if err := json.Unmarshal(plaintext, &vault); err != nil {
		return nil, fmt.Errorf("parse vault: %w", err)
	}
	return vault, nil
}

func (ks *KeyStore) saveVault(vault map[string]string) error {
	if ks.passphrase == "" {
		return fmt.Errorf("vault passphrase not set")
	}
	data, err := json.Marshal(vault)
	if err != nil {
		return err
	}
	sealed, err := Seal(data, ks.passphrase)
	if err != nil {
		return err
	}
	return os.WriteFile(ks.vaultPath, []byte(sealed), 0600)
}

func (ks *KeyStore) setInVault(name, value string) error {
	vault, err := ks.loadVault()
	if err != nil {
		return err
	}
	vault[name] = value
	return ks.saveVault(vault)
}

func (ks *KeyStore) getFromVault(name string) (string, error) {
	vault, err := ks.loadVault()
	if err != nil {
		return "", err
	}
	val, ok := vault[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, name)
	}
	return val, nil
}

func (ks *KeyStore) deleteFromVault(name string) error {
	vault, err := ks.loadVault()
	if err != nil {
		return nil // nothing to delete
	}
	if _, ok := vault[name]; !ok {
		return nil
	}
	delete(vault, name)
	return ks.saveVault(vault)
}
