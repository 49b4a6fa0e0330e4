package util

import (
	"errors"
	"path/filepath"
	"strings"
)

var ErrInvalidFileName = errors.New("invalid file name")

// SanitizeFileName reduces an uploaded name to a safe base name for headers
// and logs. Path components, quotes and control characters are removed.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	s = filepath.Base(s)
	if s == "." || s == "/" || s == ".." {
		return "", ErrInvalidFileName
	}
	s = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidFileName
	}
	return s, nil
}

// SwapExtension replaces the extension of name with ext (including the dot).
func SwapExtension(name, ext string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		base = "report"
	}
	return base + ext
}
