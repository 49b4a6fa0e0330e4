package health

import (
	"time"

	"legal-lens/internal/analysis"
	"legal-lens/internal/llm"
)

// SessionCounter reports the number of live sessions.
type SessionCounter interface {
	Count() int
}

// Status is the health payload.
type Status struct {
	OK             bool          `json:"ok"`
	DefaultMode    analysis.Mode `json:"defaultMode"`
	Provider       string        `json:"provider"`
	ActiveSessions int           `json:"activeSessions"`
	UptimeSeconds  int64         `json:"uptimeSeconds"`
}

// Service encapsulates health-related checks.
type Service struct {
	Sessions SessionCounter
	Default  llm.Credential
	started  time.Time
	now      func() time.Time
}

// NewService constructs a new health service. def is the pre-configured
// credential; only whether it carries a key is reported.
func NewService(sessions SessionCounter, def llm.Credential) *Service {
	return &Service{Sessions: sessions, Default: def.Normalize(), started: time.Now(), now: time.Now}
}

// Status returns the current health payload.
func (s *Service) Status() Status {
	st := Status{
		OK:          true,
		DefaultMode: analysis.ResolveMode(s.Default),
		Provider:    s.Default.Provider,
	}
	if s.Sessions != nil {
		st.ActiveSessions = s.Sessions.Count()
	}
	if s.now != nil && !s.started.IsZero() {
		st.UptimeSeconds = int64(s.now().Sub(s.started).Seconds())
	}
	return st
}
