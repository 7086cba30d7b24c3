package metrics

import "strings"

// norm keeps label values bounded and tidy.
func norm(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "unknown"
	}
	return s
}
