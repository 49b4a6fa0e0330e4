package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

const (
	MediaTypePDF      = "application/pdf"
	MediaTypeText     = "text/plain"
	MediaTypeMarkdown = "text/markdown"
)

// ErrUnsupportedMediaType is returned for uploads that are neither PDF nor text.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// Extraction is the text derived from one uploaded document. Text is always
// set, possibly empty.
type Extraction struct {
	Text      string   `json:"text"`
	MediaType string   `json:"mediaType"`
	PageCount int      `json:"pageCount"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ExtractFromBytes converts an uploaded payload into text. Only an unsupported
// media type or a cancelled context produce an error; unreadable PDFs and
// undecodable bytes degrade to warnings.
func ExtractFromBytes(ctx context.Context, data []byte, mediaType string, fileName string) (Extraction, error) {
	if err := ctx.Err(); err != nil {
		return Extraction{}, err
	}

	resolved := ResolveMediaType(mediaType, fileName, data)
	switch resolved {
	case MediaTypePDF:
		return extractPDF(ctx, data)
	case MediaTypeText, MediaTypeMarkdown:
		return extractPlainText(data, resolved), nil
	default:
		return Extraction{}, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, describe(mediaType, fileName))
	}
}

// ResolveMediaType picks the effective media type from the declared type, then
// the file extension, then the content itself. It returns "" when none apply.
func ResolveMediaType(declared string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	switch clean {
	case MediaTypePDF, "application/x-pdf":
		return MediaTypePDF
	case MediaTypeText:
		return MediaTypeText
	case MediaTypeMarkdown, "text/x-markdown":
		return MediaTypeMarkdown
	case "", "application/octet-stream", "binary/octet-stream":
	default:
		return ""
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MediaTypePDF
	case ".txt", ".text":
		return MediaTypeText
	case ".md", ".markdown":
		return MediaTypeMarkdown
	}

	return sniff(data)
}

func sniff(data []byte) string {
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return MediaTypePDF
	}
	if len(data) == 0 {
		return ""
	}
	if strings.HasPrefix(http.DetectContentType(data), "text/plain") {
		return MediaTypeText
	}
	return ""
}

func describe(mediaType, fileName string) string {
	mediaType = strings.TrimSpace(mediaType)
	if mediaType == "" {
		mediaType = "unknown"
	}
	if fileName == "" {
		return mediaType
	}
	return fmt.Sprintf("%s (%s)", mediaType, fileName)
}
