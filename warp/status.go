package warp

import "strings"

const statusUpdatePrefix = "Status update:"

// Display values produced by ParseStatus when warp-cli prints no
// "Status update:" line.
const (
	StatusConnected    = "Connected"
	StatusDisconnected = "Disconnected"
	StatusUnknown      = "Unknown"
)

// ParseStatus extracts the human status from "warp-cli status" output.
//
// The text after "Status update:" wins. Without it, output mentioning
// "disconnected" maps to Disconnected and output mentioning "connected" to
// Connected; anything else is returned trimmed, or Unknown when empty.
func ParseStatus(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if i := strings.Index(line, statusUpdatePrefix); i >= 0 {
			return strings.TrimSpace(line[i+len(statusUpdatePrefix):])
		}
	}

	lower := strings.ToLower(out)
	switch {
	case strings.Contains(lower, "disconnected"):
		return StatusDisconnected
	case strings.Contains(lower, "connected"):
		return StatusConnected
	}

	if trimmed := strings.TrimSpace(out); trimmed != "" {
		return trimmed
	}
	return StatusUnknown
}

// IsConnected reports whether a parsed status means the tunnel is up.
func IsConnected(status string) bool {
	lower := strings.ToLower(strings.TrimSpace(status))
	if lower == "connected" {
		return true
	}
	return strings.Contains(lower, "connected") && !strings.Contains(lower, "disconnected")
}
