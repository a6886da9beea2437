// Package keyring provides secure credential storage.
// It uses the system keyring when available, falling back to
// encrypted local file storage when not.
package keyring

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/warppulse/warppulse/common"
	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/chacha20poly1305"
)

// LicenseKey is the entry holding the WARP+ license key.
const LicenseKey = "warp-plus-license"

// Common errors returned by keyring operations.
var (
	ErrNotFound = common.ErrCredentialsNotFound
	ErrEmptyKey = errors.New("credential key cannot be empty")
)

// Store keeps secrets in the system keyring, or in an encrypted file when
// no keyring service is reachable.
type Store struct {
	mu       sync.RWMutex
	service  string
	useLocal bool
	local    map[string]string
	path     string
	key      []byte
}

var _ common.SecretStore = (*Store)(nil)

// Open returns a Store for the application service name, probing the
// system keyring once.
func Open() (*Store, error) {
	dir, err := common.GetConfigDir()
	if err != nil {
		return nil, err
	}
	s := &Store{service: common.KeyringService, path: filepath.Join(dir, common.CredentialsFileName)}

	probe := common.KeyringService + "-probe"
	if err := keyring.Set(s.service, probe, "probe"); err == nil {
		keyring.Delete(s.service, probe)
		return s, nil
	}

	common.LogInfo("System keyring unavailable, using encrypted file storage")
	if err := s.initLocal(machineKey()); err != nil {
		return nil, err
	}
	return s, nil
}

// NewFileStore returns a Store that only uses the encrypted file at path.
func NewFileStore(path string, key []byte) (*Store, error) {
	s := &Store{service: common.KeyringService, path: path}
	if err := s.initLocal(key); err != nil {
		return nil, err
	}
	return s, nil
}

// UsesFile reports whether secrets are kept in the encrypted file.
func (s *Store) UsesFile() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.useLocal
}

func (s *Store) initLocal(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(key)
}

// loadLocked switches to the file store and reads any existing file.
// Callers hold s.mu.
func (s *Store) loadLocked(key []byte) error {
	if len(key) != chacha20poly1305.KeySize {
		sum := sha256.Sum256(key)
		key = sum[:]
	}

	s.useLocal = true
	s.key = key
	s.local = make(map[string]string)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrCredentialStorage, err)
	}

	plain, err := s.decrypt(data)
	if err != nil {
		// An unreadable file (new machine id, corruption) is treated as empty.
		common.LogWarn("Discarding unreadable credential file: %v", err)
		return nil
	}
	return json.Unmarshal(plain, &s.local)
}

// machineKey derives the file encryption key from machine-specific data.
func machineKey() []byte {
	hostname, _ := os.Hostname()
	keyData := fmt.Sprintf("%s-%s-%s-%d", common.KeyringService, hostname, machineID(), os.Getuid())
	hash := sha256.Sum256([]byte(keyData))
	return hash[:]
}

func machineID() string {
	data, err := os.ReadFile("/etc/machine-id")
	if err == nil {
		return strings.TrimSpace(string(data))
	}
	return "default-machine-id"
}

// saveLocked writes the file store. Callers hold s.mu.
func (s *Store) saveLocked() error {
	data, err := json.Marshal(s.local)
	if err != nil {
		return err
	}

	encrypted, err := s.encrypt(data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("%w: %v", common.ErrCredentialStorage, err)
	}
	if err := os.WriteFile(s.path, encrypted, 0600); err != nil {
		return fmt.Errorf("%w: %v", common.ErrCredentialStorage, err)
	}
	return nil
}

func (s *Store) encrypt(plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}

	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	return []byte(base64.StdEncoding.EncodeToString(sealed)), nil
}

func (s *Store) decrypt(data []byte) ([]byte, error) {
	sealed, err := base64.StdEncoding.DecodeString(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}

	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}
	if len(sealed) < aead.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext too short", common.ErrDecryption)
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryption, err)
	}
	return plain, nil
}

// Store saves secret under key.
func (s *Store) Store(key, secret string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if secret == "" {
		return errors.New("secret cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.useLocal {
		err := keyring.Set(s.service, key, secret)
		if err == nil {
			return nil
		}
		common.LogWarn("System keyring write failed, falling back to file: %v", err)
		if err := s.loadLocked(machineKey()); err != nil {
			return err
		}
	}

	s.local[key] = secret
	return s.saveLocked()
}

// Get retrieves the secret stored under key.
func (s *Store) Get(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.useLocal {
		secret, ok := s.local[key]
		if !ok {
			return "", ErrNotFound
		}
		return secret, nil
	}

	secret, err := keyring.Get(s.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", common.ErrCredentialStorage, err)
	}
	return secret, nil
}

// Delete removes the secret stored under key. Deleting a missing key is
// not an error.
func (s *Store) Delete(key string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.useLocal {
		if _, ok := s.local[key]; !ok {
			return nil
		}
		delete(s.local, key)
		return s.saveLocked()
	}

	if err := keyring.Delete(s.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("%w: %v", common.ErrCredentialStorage, err)
	}
	return nil
}

// Exists checks if a secret is stored under key.
func (s *Store) Exists(key string) bool {
	_, err := s.Get(key)
	return err == nil
}

// MaskLicense shortens a license key for display, keeping the last four
// characters.
func MaskLicense(key string) string {
	key = strings.TrimSpace(key)
	if len(key) <= 4 {
		return strings.Repeat("•", len(key))
	}
	return strings.Repeat("•", 4) + key[len(key)-4:]
}
