package tables

import "strings"

// FromPath extracts the table identifier from a navigation path: the first
// path segment made up entirely of digits. The backend routing relies on the
// same positional convention, so this must not get cleverer than that.
func FromPath(path string) (string, bool) {
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}
		if isAllDigits(segment) {
			return segment, true
		}
	}
	return "", false
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
