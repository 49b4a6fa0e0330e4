package extract

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText decodes data as UTF-8. Every byte that is not part of a valid
// sequence becomes U+FFFD; it never fails.
func DecodeText(data []byte) (string, int) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data), 0
	}
	var b strings.Builder
	b.Grow(len(data))
	replaced := 0
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size <= 1 {
			replaced++
		}
		b.WriteRune(r)
		data = data[size:]
	}
	return b.String(), replaced
}

func extractPlainText(data []byte, mediaType string) Extraction {
	text, replaced := DecodeText(data)
	out := Extraction{Text: text, MediaType: mediaType}
	if replaced > 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%d undecodable byte(s) replaced with U+FFFD", replaced))
	}
	return out
}
