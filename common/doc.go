// Package common provides shared constants, types, utilities, and interfaces
// used throughout WarpPulse.
//
// This package serves as the foundation for cross-cutting concerns:
//
//   - Constants: application metadata, file names, intervals and UI sizes
//   - Errors: sentinel errors checked with errors.Is
//   - Interfaces: the warp-cli controller, secret storage, event recording
//   - Logger: levelled logging to the console and a rotated file
//   - Utils: directory helpers and small string helpers
//
// # Usage
//
//	common.LogInfo("Running warp-cli %s", strings.Join(args, " "))
//
//	if errors.Is(err, common.ErrCLINotFound) {
//	    // warp-cli is not installed
//	}
package common
