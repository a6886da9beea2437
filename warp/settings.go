package warp

import (
	"regexp"
	"strings"
)

var modeLinePattern = regexp.MustCompile(`(?i)Mode:\s+([a-zA-Z+]+)`)

// Field is one labelled row of client information.
type Field struct {
	Label string
	Value string
}

// clientInfoKeys are the settings keys shown as client information.
var clientInfoKeys = []struct {
	key, label string
}{
	{"Expected Device ID", "Device ID"},
	{"Protocol", "Protocol"},
	{"Family Mode", "Family Mode"},
	{"Gateway ID", "Gateway ID"},
}

// Settings is the parsed output of "warp-cli settings".
type Settings struct {
	Raw    string
	Fields map[string]string
}

// ParseSettings splits "key: value" lines. A leading "(source)" tag on the
// key, as printed by newer warp-cli releases, is dropped. Later duplicates
// replace earlier ones.
func ParseSettings(out string) *Settings {
	s := &Settings{Raw: out, Fields: make(map[string]string)}
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if strings.HasPrefix(key, "(") {
			if end := strings.Index(key, ")"); end >= 0 {
				key = strings.TrimSpace(key[end+1:])
			}
		}
		if key == "" {
			continue
		}
		s.Fields[key] = strings.TrimSpace(value)
	}
	return s
}

// Get returns the value for key and whether it was present.
func (s *Settings) Get(key string) (string, bool) {
	if s == nil {
		return "", false
	}
	v, ok := s.Fields[key]
	return v, ok
}

// Mode returns the current mode from the Mode field.
func (s *Settings) Mode() (Mode, bool) {
	v, ok := s.Get("Mode")
	if !ok {
		return "", false
	}
	return ModeFromSetting(v)
}

// ClientInfo returns the client information rows that are present, in
// display order.
func (s *Settings) ClientInfo() []Field {
	var rows []Field
	for _, k := range clientInfoKeys {
		if v, ok := s.Get(k.key); ok {
			rows = append(rows, Field{Label: k.label, Value: v})
		}
	}
	return rows
}

// ModeLabel extracts a short mode label from "warp-cli settings" output.
// DnsOverHttps and DnsOverTls are shortened to DoH and DoT; other values
// are returned as printed. It returns "Unknown" when no mode line exists.
func ModeLabel(out string) string {
	m := modeLinePattern.FindStringSubmatch(out)
	if m == nil {
		return StatusUnknown
	}
	switch strings.ToLower(m[1]) {
	case "dnsoverhttps":
		return "DoH"
	case "dnsovertls":
		return "DoT"
	}
	return m[1]
}
