// Package warp drives the Cloudflare WARP client through its warp-cli tool.
//
// Nothing here speaks the WARP protocol. Every operation spawns warp-cli
// once with a fixed argument list and relays its text output:
//
//   - Client: one method per warp-cli subcommand (connect, status, mode, ...)
//   - Runner: the process spawner, replaceable in tests
//   - Parsers: status, settings and mode views computed from the raw text
//   - Monitor: periodic refresh of status and settings with change callbacks
//
// # Errors
//
// A warp-cli that cannot be started yields common.ErrCLINotFound or
// common.ErrTimeout. A warp-cli that exits non-zero yields a *CommandError
// whose message is the tool's stderr, unchanged. Status and Settings are
// exceptions: they return stdout whatever the exit status.
//
// # Thread Safety
//
// Client holds no mutable state; concurrent invocations are independent
// and unordered. Monitor uses internal locking.
package warp
