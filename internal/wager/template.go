package wager

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RequestTemplate is one captured submission request: destination,
// headers and parsed JSON body. Bodies are kept as generic JSON so
// provider fields we never interpret survive replay unchanged.
type RequestTemplate struct {
	URL     string
	Headers http.Header
	Body    map[string]any
}

// ParseTemplate builds a template from a captured raw body.
func ParseTemplate(url string, headers http.Header, rawBody []byte) (*RequestTemplate, error) {
	var body map[string]any
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return nil, fmt.Errorf("parse captured body: %w", err)
	}
	return &RequestTemplate{URL: url, Headers: headers.Clone(), Body: body}, nil
}

// Clone deep-copies the template so per-submission rewrites never leak
// into the captured original.
func (t *RequestTemplate) Clone() *RequestTemplate {
	return &RequestTemplate{
		URL:     t.URL,
		Headers: t.Headers.Clone(),
		Body:    deepCopy(t.Body).(map[string]any),
	}
}

// CustomizeLocked rewrites only the fields a locked replay may touch:
// stake, payout, a fresh cart id, the connection sequence number, and
// the caller's live auth token. Everything else, price included,
// replays exactly as captured.
func (t *RequestTemplate) CustomizeLocked(stakeMinor, payoutMinor int64, authToken string, seq int64) {
	setPath(t.Body, seq, "header", "conn_seq")
	if authToken != "" {
		setPath(t.Body, authToken, "header", "auth_token")
	}
	setPath(t.Body, uuid.NewString(), "invocation", "request", "cart_id")

	if pick := pathSlice0(t.Body, "invocation", "request", "picks"); pick != nil {
		pick["risk_amount"] = stakeMinor
		pick["expected_payout_amount"] = payoutMinor
	}
}

// Customize rewrites a structural template taken from session history
// for a new selection: everything CustomizeLocked touches plus the
// price and identifier fields.
func (t *RequestTemplate) Customize(stakeMinor, payoutMinor int64, price int, identifier, authToken string, seq int64) {
	t.CustomizeLocked(stakeMinor, payoutMinor, authToken, seq)
	if pick := pathSlice0(t.Body, "invocation", "request", "picks"); pick != nil {
		if sel := slice0(pick["selections"]); sel != nil {
			sel["proposal_fkey"] = identifier
			sel["coeff"] = price
		}
	}
}

// Encode marshals the body for submission.
func (t *RequestTemplate) Encode() ([]byte, error) {
	return json.Marshal(t.Body)
}

// lockedEntry pairs a locked template with its capture time for TTL
// expiry.
type lockedEntry struct {
	tpl        *RequestTemplate
	capturedAt time.Time
}

// TemplateCache holds one locked request template per selection
// identifier. Last write wins; entries expire after TTL or on explicit
// invalidation (market gone), never silently replayed stale forever.
type TemplateCache struct {
	mu      sync.Mutex
	entries map[string]lockedEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewTemplateCache creates a cache with the given TTL. Zero TTL means
// entries live until process restart or invalidation.
func NewTemplateCache(ttl time.Duration) *TemplateCache {
	return &TemplateCache{
		entries: make(map[string]lockedEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put captures a template for an identifier, overwriting any previous
// capture.
func (c *TemplateCache) Put(identifier string, tpl *RequestTemplate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[identifier] = lockedEntry{tpl: tpl.Clone(), capturedAt: c.now()}
}

// Get returns a clone of the locked template for an identifier, if one
// exists and has not expired.
func (c *TemplateCache) Get(identifier string) (*RequestTemplate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[identifier]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.capturedAt) > c.ttl {
		delete(c.entries, identifier)
		return nil, false
	}
	return entry.tpl.Clone(), true
}

// Invalidate drops the template for an identifier. Called when a
// submission through it reports the market or event gone.
func (c *TemplateCache) Invalidate(identifier string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, identifier)
}

// Len returns the number of live templates.
func (c *TemplateCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func deepCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = deepCopy(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = deepCopy(item)
		}
		return out
	default:
		return v
	}
}

// setPath writes a value at a nested map path, creating intermediate
// maps as needed.
func setPath(body map[string]any, value any, path ...string) {
	cur := body
	for _, key := range path[:len(path)-1] {
		next, ok := cur[key].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[key] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = value
}

// pathSlice0 returns the first element of a slice at a nested path, if
// it is an object.
func pathSlice0(body map[string]any, path ...string) map[string]any {
	var cur any = body
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[key]
	}
	return slice0(cur)
}

func slice0(v any) map[string]any {
	s, ok := v.([]any)
	if !ok || len(s) == 0 {
		return nil
	}
	m, _ := s[0].(map[string]any)
	return m
}
