package contracts

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"legal-lens/internal/shared/util"
)

// multipartOverhead is the slack allowed on top of the file size for the
// multipart framing and the optional credential fields.
const multipartOverhead = 64 << 10

var (
	ErrMissingFile = errors.New("file is required")
	ErrTooLarge    = errors.New("file is too large")
	ErrUnreadable  = errors.New("unable to read file")
)

// Upload is one document as received from a client.
type Upload struct {
	FileName  string
	MediaType string
	Data      []byte
}

// ReadUpload reads the multipart "file" field, refusing anything above
// maxBytes. A non-positive maxBytes disables the limit.
func ReadUpload(c *gin.Context, maxBytes int64) (Upload, error) {
	if maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes+multipartOverhead)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			return Upload{}, ErrTooLarge
		}
		return Upload{}, ErrMissingFile
	}
	if maxBytes > 0 && fileHeader.Size > maxBytes {
		return Upload{}, ErrTooLarge
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Upload{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Upload{}, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	name, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		name = "contract"
	}
	return Upload{
		FileName:  name,
		MediaType: fileHeader.Header.Get("Content-Type"),
		Data:      data,
	}, nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
