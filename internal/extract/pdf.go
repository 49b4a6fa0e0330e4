package extract

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pageSource is the slice of a paged document the extractor needs.
type pageSource interface {
	NumPage() int
	PageText(n int) (string, error)
}

type ledongthucPages struct {
	reader *pdf.Reader
}

func (p ledongthucPages) NumPage() int {
	return p.reader.NumPage()
}

func (p ledongthucPages) PageText(n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("page %d: %v", n, rec)
		}
	}()
	page := p.reader.Page(n)
	if page.V.IsNull() {
		return "", nil
	}
	text, err = page.GetPlainText(nil)
	return trimPageText(text), err
}

// trimPageText drops the line break the reader emits when a page opens its
// first text object.
func trimPageText(text string) string {
	return strings.TrimPrefix(text, "\n")
}

func openPDF(data []byte) (src pageSource, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			src, err = nil, fmt.Errorf("open pdf: %v", rec)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return ledongthucPages{reader: reader}, nil
}

func extractPDF(ctx context.Context, data []byte) (Extraction, error) {
	out := Extraction{MediaType: MediaTypePDF}
	src, err := openPDF(data)
	if err != nil {
		out.Warnings = append(out.Warnings, err.Error())
		return out, nil
	}
	text, pages, warnings, err := joinPages(ctx, src)
	if err != nil {
		return Extraction{}, err
	}
	out.Text = text
	out.PageCount = pages
	out.Warnings = append(out.Warnings, warnings...)
	return out, nil
}

// joinPages reads every page in order and joins them with "\n". A page that
// fails contributes "" and a warning, so N pages always yield N segments.
func joinPages(ctx context.Context, src pageSource) (string, int, []string, error) {
	count, err := safeNumPage(src)
	if err != nil {
		return "", 0, []string{err.Error()}, nil
	}
	segments := make([]string, 0, count)
	var warnings []string
	for i := 1; i <= count; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, nil, err
		}
		text, err := src.PageText(i)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: text extraction failed: %v", i, err))
			text = ""
		}
		segments = append(segments, text)
	}
	if count > 0 && strings.TrimSpace(strings.Join(segments, "")) == "" {
		warnings = append(warnings, "no extractable text found; the document may be scanned images")
	}
	return strings.Join(segments, "\n"), count, warnings, nil
}

func safeNumPage(src pageSource) (n int, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			n, err = 0, fmt.Errorf("read page count: %v", rec)
		}
	}()
	return src.NumPage(), nil
}
