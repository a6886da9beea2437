package warp

import (
	"strings"
)

// ParseTunnelIPs extracts the excluded routes from "warp-cli tunnel ip list"
// output, in canonical CIDR form and in the order listed. Headers and
// descriptions between the routes are ignored.
func ParseTunnelIPs(out string) []string {
	var routes []string
	seen := make(map[string]bool)

	for _, field := range strings.Fields(out) {
		route := NormalizeRoute(strings.Trim(field, ",;()"))
		if route == "" || seen[route] {
			continue
		}
		seen[route] = true
		routes = append(routes, route)
	}
	return routes
}
