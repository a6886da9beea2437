package warp

import (
	"fmt"
	"strings"

	"github.com/warppulse/warppulse/common"
)

// Mode is a warp-cli operating mode as passed to "warp-cli mode".
type Mode string

const (
	ModeWarp    Mode = "warp"
	ModeDoH     Mode = "doh"
	ModeWarpDoH Mode = "warp+doh"
	ModeDoT     Mode = "dot"
	ModeWarpDoT Mode = "warp+dot"
	ModeProxy   Mode = "proxy"
)

// Modes lists the selectable modes in display order.
var Modes = []Mode{ModeWarp, ModeDoH, ModeWarpDoH, ModeDoT, ModeWarpDoT, ModeProxy}

var modeLabels = map[Mode]string{
	ModeWarp:    "WARP",
	ModeDoH:     "DNS over HTTPS",
	ModeWarpDoH: "WARP + DoH",
	ModeDoT:     "DNS over TLS",
	ModeWarpDoT: "WARP + DoT",
	ModeProxy:   "Proxy",
}

// Label returns the display name of the mode, or the id itself for modes
// not in Modes.
func (m Mode) Label() string {
	if label, ok := modeLabels[m]; ok {
		return label
	}
	return string(m)
}

// Known reports whether m is one of Modes.
func (m Mode) Known() bool {
	_, ok := modeLabels[m]
	return ok
}

func (m Mode) String() string {
	return string(m)
}

// ParseMode accepts a mode id or its label, case-insensitively.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, m := range Modes {
		if s == string(m) || s == strings.ToLower(m.Label()) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", common.ErrInvalidMode, s)
}

// ModeFromSetting maps the Mode value of "warp-cli settings" (for example
// "WarpWithDnsOverHttps" or "WarpProxy on port 40000") to a Mode. The
// second result is false when the value matches none of Modes, in which
// case the lowercased value is returned as is.
func ModeFromSetting(value string) (Mode, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return "", false
	}

	hasWarp := strings.Contains(v, "warp")
	switch {
	case strings.Contains(v, "proxy"):
		return ModeProxy, true
	case strings.Contains(v, "https") || strings.Contains(v, "doh"):
		if hasWarp {
			return ModeWarpDoH, true
		}
		return ModeDoH, true
	case strings.Contains(v, "tls") || strings.Contains(v, "dot"):
		if hasWarp {
			return ModeWarpDoT, true
		}
		return ModeDoT, true
	case hasWarp:
		return ModeWarp, true
	}
	return Mode(v), false
}
