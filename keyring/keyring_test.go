package keyring

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/warppulse/warppulse/common"
	"github.com/zalando/go-keyring"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".credentials")
	key := []byte("test-key")

	store, err := NewFileStore(path, key)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if !store.UsesFile() {
		t.Error("file store should report file usage")
	}

	if err := store.Store(LicenseKey, "abcd-1234-efgh"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "abcd-1234-efgh") {
		t.Error("secret should not be stored in plain text")
	}

	reopened, err := NewFileStore(path, key)
	if err != nil {
		t.Fatal(err)
	}
	got, err := reopened.Get(LicenseKey)
	if err != nil || got != "abcd-1234-efgh" {
		t.Errorf("Get() = %q, %v; want stored secret", got, err)
	}

	if err := reopened.Delete(LicenseKey); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if reopened.Exists(LicenseKey) {
		t.Error("secret should be gone after Delete()")
	}
	if err := reopened.Delete(LicenseKey); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
}

func TestFileStore_WrongKeyStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".credentials")

	store, _ := NewFileStore(path, []byte("first"))
	if err := store.Store(LicenseKey, "secret"); err != nil {
		t.Fatal(err)
	}

	other, err := NewFileStore(path, []byte("second"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if _, err := other.Get(LicenseKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() with another key error = %v, want ErrNotFound", err)
	}
}

func TestStore_Validation(t *testing.T) {
	store, _ := NewFileStore(filepath.Join(t.TempDir(), ".credentials"), []byte("k"))

	if err := store.Store("", "x"); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("Store(empty key) error = %v", err)
	}
	if err := store.Store(LicenseKey, ""); err == nil {
		t.Error("Store(empty secret) should fail")
	}
	if _, err := store.Get(""); !errors.Is(err, ErrEmptyKey) {
		t.Errorf("Get(empty key) error = %v", err)
	}
	if _, err := store.Get("missing"); !errors.Is(err, common.ErrCredentialsNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrCredentialsNotFound", err)
	}
}

func TestOpen_SystemKeyring(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	keyring.MockInit()

	store, err := Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if store.UsesFile() {
		t.Error("Open() should use the system keyring when it works")
	}

	if err := store.Store(LicenseKey, "license"); err != nil {
		t.Fatal(err)
	}
	if got, err := keyring.Get(common.KeyringService, LicenseKey); err != nil || got != "license" {
		t.Errorf("keyring entry = %q, %v", got, err)
	}
	if err := store.Delete(LicenseKey); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(LicenseKey); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete() error = %v, want ErrNotFound", err)
	}
}

func TestOpen_FallsBackToFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	keyring.MockInitWithError(errors.New("no dbus"))

	store, err := Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !store.UsesFile() {
		t.Error("Open() should fall back to the file store")
	}
	if err := store.Store(LicenseKey, "license"); err != nil {
		t.Fatal(err)
	}
	if got, _ := store.Get(LicenseKey); got != "license" {
		t.Errorf("Get() = %q, want license", got)
	}
}

func TestStore_FallbackKeepsExistingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	keyring.MockInit()

	store, err := Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	existing, err := NewFileStore(store.path, machineKey())
	if err != nil {
		t.Fatal(err)
	}
	if err := existing.Store("other", "kept"); err != nil {
		t.Fatal(err)
	}

	keyring.MockInitWithError(errors.New("keyring locked"))
	if err := store.Store(LicenseKey, "license"); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if !store.UsesFile() {
		t.Error("a failed keyring write should switch to the file store")
	}

	reopened, err := NewFileStore(store.path, machineKey())
	if err != nil {
		t.Fatal(err)
	}
	if got, err := reopened.Get("other"); err != nil || got != "kept" {
		t.Errorf("Get(other) = %q, %v; the existing entry should survive", got, err)
	}
	if got, err := reopened.Get(LicenseKey); err != nil || got != "license" {
		t.Errorf("Get(license) = %q, %v", got, err)
	}
}

func TestMaskLicense(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "•••"},
		{"x1y2-z3w4-q9r8", "••••q9r8"},
	}
	for _, tt := range tests {
		if got := MaskLicense(tt.in); got != tt.want {
			t.Errorf("MaskLicense(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
