package commands

import "strings"

// fileURI prefixes an absolute artifact path with the file:// scheme so
// it renders as a clickable hyperlink in terminals that support OSC 8.
// Relative paths and paths already carrying a scheme pass through
// unchanged.
func fileURI(path string) string {
	if path == "" || strings.Contains(path, "://") || !strings.HasPrefix(path, "/") {
		return path
	}
	return "file://" + path
}
