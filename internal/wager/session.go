package wager

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// historyLimit bounds the per-session ring of observed submission
// requests.
const historyLimit = 8

// Session is one authenticated execution context: its tokens, the
// submission endpoint captured from live traffic, and a bounded
// history of observed requests used as a structural template when no
// locked template exists. Sessions never share tokens.
type Session struct {
	Name string

	mu        sync.Mutex
	authToken string
	endpoint  string
	headers   http.Header
	history   []*RequestTemplate

	seq atomic.Int64

	// Skip flags set by outcome classification. A funds-flagged
	// session is excluded for the rest of the run; an auth-flagged one
	// needs credential refresh before it submits again.
	outOfFunds atomic.Bool
	needsAuth  atomic.Bool

	client *http.Client

	// UI is the automation collaborator bound to this session's
	// browser context; nil when the session is API-only.
	UI UIDriver
}

// NewSession creates a session with its own HTTP client.
func NewSession(name string, timeout time.Duration) *Session {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Session{
		Name:    name,
		headers: make(http.Header),
		client:  &http.Client{Timeout: timeout},
	}
}

// SetAuth installs the live bearer token. Clears the needs-auth flag.
func (s *Session) SetAuth(token string) {
	s.mu.Lock()
	s.authToken = token
	s.mu.Unlock()
	s.needsAuth.Store(false)
}

// AuthToken returns the live token.
func (s *Session) AuthToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authToken
}

// CaptureEndpoint records the submission endpoint and headers observed
// from live traffic.
func (s *Session) CaptureEndpoint(url string, headers http.Header) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoint = url
	if headers != nil {
		s.headers = headers.Clone()
	}
}

// Endpoint returns the captured submission endpoint, empty if none.
func (s *Session) Endpoint() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint
}

// Headers returns a copy of the captured request headers.
func (s *Session) Headers() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers.Clone()
}

// CanSubmitAPI reports whether the programmatic path is available.
func (s *Session) CanSubmitAPI() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpoint != "" && s.authToken != ""
}

// ObserveRequest appends a captured request to the bounded history.
func (s *Session) ObserveRequest(tpl *RequestTemplate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, tpl.Clone())
	if len(s.history) > historyLimit {
		s.history = s.history[len(s.history)-historyLimit:]
	}
}

// LatestTemplate returns a clone of the most recently observed
// request, or nil when nothing has been captured yet.
func (s *Session) LatestTemplate() *RequestTemplate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.history) == 0 {
		return nil
	}
	return s.history[len(s.history)-1].Clone()
}

// NextSeq increments and returns the connection sequence number.
func (s *Session) NextSeq() int64 { return s.seq.Add(1) }

// MarkOutOfFunds excludes the session for the rest of the run.
func (s *Session) MarkOutOfFunds() { s.outOfFunds.Store(true) }

// OutOfFunds reports whether the session is funds-excluded.
func (s *Session) OutOfFunds() bool { return s.outOfFunds.Load() }

// MarkNeedsAuth flags the session for credential refresh.
func (s *Session) MarkNeedsAuth() { s.needsAuth.Store(true) }

// NeedsAuth reports whether the session needs re-auth.
func (s *Session) NeedsAuth() bool { return s.needsAuth.Load() }
