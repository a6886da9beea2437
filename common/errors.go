// Package common provides shared constants, types, and utilities
// used across WarpPulse.
package common

import "errors"

// Sentinel errors.
// These can be checked with errors.Is() for proper error handling.
var (
	// warp-cli errors.
	ErrCLINotFound   = errors.New("warp-cli not found")
	ErrCommandFailed = errors.New("warp-cli command failed")
	ErrTimeout       = errors.New("operation timed out")
	ErrBusy          = errors.New("another operation is in progress")

	// Argument errors, raised before anything is spawned.
	ErrInvalidMode    = errors.New("invalid mode")
	ErrInvalidRoute   = errors.New("invalid IP address or network")
	ErrInvalidLicense = errors.New("invalid license key")

	// Credential errors.
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrCredentialStorage   = errors.New("failed to store credentials")
	ErrEncryption          = errors.New("encryption error")
	ErrDecryption          = errors.New("decryption error")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")

	// History errors.
	ErrHistoryUnavailable = errors.New("history store unavailable")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
