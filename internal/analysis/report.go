package analysis

import (
	"time"
)

// Report collects every stage outcome for one uploaded document. It lives
// only for the request that produced it.
type Report struct {
	ID               string    `json:"id"`
	FileName         string    `json:"fileName"`
	MediaType        string    `json:"mediaType"`
	PageCount        int       `json:"pageCount"`
	CharCount        int       `json:"charCount"`
	Preview          string    `json:"preview"`
	PreviewTruncated bool      `json:"previewTruncated"`
	Warnings         []string  `json:"warnings,omitempty"`
	Mode             Mode      `json:"mode"`
	Provider         string    `json:"provider,omitempty"`
	Model            string    `json:"model,omitempty"`
	Outcomes         []Outcome `json:"outcomes"`
	CreatedAt        time.Time `json:"createdAt"`
	DurationMs       float64   `json:"durationMs"`
}

// Outcome returns the outcome of stage, if it ran.
func (r Report) Outcome(stage Stage) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Stage == stage {
			return o, true
		}
	}
	return Outcome{}, false
}

// PreviewText is the preview as displayed, with an ellipsis when cut.
func (r Report) PreviewText() string {
	if r.PreviewTruncated {
		return r.Preview + "..."
	}
	return r.Preview
}
