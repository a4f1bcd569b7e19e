package textutil

import (
	"regexp"
	"strings"
)

// catalogSpacing matches a Messier/NGC-style catalog prefix separated from its
// number ("M 31", "n 7000") so the space can be collapsed before sanitizing.
var catalogSpacing = regexp.MustCompile(`(?i)([MN])\s+([0-9]+)`)

// CollapseCatalogSpacing joins catalog designations split by whitespace,
// turning "M 31" into "M31". Other spacing is left for SanitizeToken.
func CollapseCatalogSpacing(name string) string {
	return catalogSpacing.ReplaceAllString(name, "$1$2")
}

// SanitizeToken converts a value to a lowercase filesystem-safe token.
// Letters are lowercased; digits, dots, hyphens, and underscores survive;
// everything else becomes an underscore. Runs of underscores collapse to one
// and the result is trimmed of leading/trailing underscores. Returns "unknown"
// for values that sanitize to nothing.
func SanitizeToken(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	b.Grow(len(value))
	lastUnderscore := false
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			if r == '_' {
				if lastUnderscore {
					continue
				}
				lastUnderscore = true
			} else {
				lastUnderscore = false
			}
			b.WriteRune(r)
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "unknown"
	}
	return out
}
