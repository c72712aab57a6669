package wager

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/perf"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/quotes"
)

// Intent is the caller's desired wager: one selection at one price for
// one stake, fanned out across sessions.
type Intent struct {
	EventID     int64
	SelectionID string // provider proposal identifier
	Selection   string // display text, used by the UI fallback
	Price       int    // American odds the caller saw
	StakeMinor  int64  // stake in minor currency units
}

// SessionResult is the outcome of one submission against one session.
type SessionResult struct {
	Session string
	Outcome Outcome
	Err     error
}

// AggregateStatus summarizes a fan-out across all sessions.
type AggregateStatus int

const (
	AggregateAllAccepted AggregateStatus = iota
	AggregatePartial
	AggregateAllFailed
	AggregatePriceChanged
	// Lock-and-load statuses. Locked means every session confirmed
	// price stability; one drift degrades the whole run.
	AggregateLocked
	AggregateOddsChanged
)

// String returns the status wire name.
func (s AggregateStatus) String() string {
	switch s {
	case AggregateAllAccepted:
		return "all_accepted"
	case AggregatePartial:
		return "partial"
	case AggregatePriceChanged:
		return "price_changed"
	case AggregateLocked:
		return "locked"
	case AggregateOddsChanged:
		return "odds_changed"
	default:
		return "all_failed"
	}
}

// AggregateResult is the joined outcome of one fan-out, with
// per-session detail retained for the caller's retry decisions.
type AggregateResult struct {
	Status  AggregateStatus
	Results []SessionResult
}

// Journal records every attempt for audit. Implementations must be
// best-effort; a journal failure never fails a wager.
type Journal interface {
	Record(ctx context.Context, session string, intent Intent, outcome Outcome)
}

// Config holds orchestrator tuning.
type Config struct {
	SubmitTimeout  time.Duration
	PriceTolerance int
	ProbeStake     int64 // minor units
	TemplateTTL    time.Duration
}

func (c *Config) applyDefaults() {
	if c.SubmitTimeout <= 0 {
		c.SubmitTimeout = 30 * time.Second
	}
	if c.PriceTolerance <= 0 {
		c.PriceTolerance = 1
	}
	if c.ProbeStake <= 0 {
		c.ProbeStake = 100
	}
	if c.TemplateTTL <= 0 {
		c.TemplateTTL = 6 * time.Hour
	}
}

// Orchestrator drives wager submission across sessions: locked
// template replay on the programmatic path, UI fallback when a session
// has no endpoint, and the lock-and-verify protocol.
type Orchestrator struct {
	cfg       Config
	templates *TemplateCache
	store     *quotes.Store
	journal   Journal
	tracker   *perf.Tracker
}

// NewOrchestrator creates an orchestrator reading the given quote
// store. journal may be nil.
func NewOrchestrator(cfg Config, store *quotes.Store, journal Journal) *Orchestrator {
	cfg.applyDefaults()
	return &Orchestrator{
		cfg:       cfg,
		templates: NewTemplateCache(cfg.TemplateTTL),
		store:     store,
		journal:   journal,
	}
}

// Templates exposes the locked-request cache, mainly for invalidation
// from operator tooling.
func (o *Orchestrator) Templates() *TemplateCache { return o.templates }

// SetTracker installs a runtime counter sink for submission outcomes.
func (o *Orchestrator) SetTracker(t *perf.Tracker) { o.tracker = t }

// SubmitWager fans the intent out across all sessions concurrently and
// waits for every attempt to settle. No early cancellation: one
// session's timeout never cancels its siblings.
func (o *Orchestrator) SubmitWager(ctx context.Context, intent Intent, sessions []*Session) AggregateResult {
	if res, drifted := o.precheckPrice(intent); drifted {
		return res
	}

	results := o.fanOut(sessions, func(s *Session) SessionResult {
		return o.submitOne(ctx, s, intent, intent.StakeMinor, false)
	})
	return aggregate(results)
}

// LockAndLoad runs the lock-and-verify protocol: a minimal probe stake
// is submitted concurrently with a session refresh, then the selection
// is re-located and its price compared against the intent. The result
// is locked only if every participating session confirms stability.
func (o *Orchestrator) LockAndLoad(ctx context.Context, intent Intent, sessions []*Session) AggregateResult {
	type verdict struct {
		result SessionResult
		stable bool
	}

	var mu sync.Mutex
	var verdicts []verdict
	var wg sync.WaitGroup
	for _, sess := range sessions {
		if sess.OutOfFunds() {
			continue
		}
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()

			var probeRes SessionResult
			var inner sync.WaitGroup
			inner.Add(2)
			go func() {
				defer inner.Done()
				probeRes = o.submitOne(ctx, s, intent, o.cfg.ProbeStake, true)
			}()
			go func() {
				defer inner.Done()
				o.refresh(ctx, s)
			}()
			inner.Wait()

			stable := o.verifyPrice(ctx, s, intent)
			mu.Lock()
			verdicts = append(verdicts, verdict{result: probeRes, stable: stable})
			mu.Unlock()
		}(sess)
	}
	wg.Wait()

	out := AggregateResult{Status: AggregateLocked}
	if len(verdicts) == 0 {
		out.Status = AggregateOddsChanged
		return out
	}
	for _, v := range verdicts {
		out.Results = append(out.Results, v.result)
		if !v.stable {
			out.Status = AggregateOddsChanged
		}
	}
	return out
}

// precheckPrice validates the caller's price against the live quote
// store before spending any submission.
func (o *Orchestrator) precheckPrice(intent Intent) (AggregateResult, bool) {
	q, ok := o.store.Lookup(intent.EventID, intent.SelectionID)
	if !ok {
		return AggregateResult{}, false
	}
	if diff := q.Price - intent.Price; diff > o.cfg.PriceTolerance || diff < -o.cfg.PriceTolerance {
		slog.Info("Pre-submission price drift, refusing intent",
			"selection", intent.SelectionID, "wanted", intent.Price, "live", q.Price)
		return AggregateResult{Status: AggregatePriceChanged}, true
	}
	return AggregateResult{}, false
}

func (o *Orchestrator) fanOut(sessions []*Session, attempt func(*Session) SessionResult) []SessionResult {
	results := make([]SessionResult, len(sessions))
	var wg sync.WaitGroup
	for i, sess := range sessions {
		wg.Add(1)
		go func(i int, s *Session) {
			defer wg.Done()
			results[i] = attempt(s)
		}(i, sess)
	}
	wg.Wait()
	return results
}

// submitOne executes one attempt against one session. probe marks a
// minimum-stake lock submission, which captures the request template.
func (o *Orchestrator) submitOne(ctx context.Context, sess *Session, intent Intent, stakeMinor int64, probe bool) SessionResult {
	res := SessionResult{Session: sess.Name}
	start := time.Now()
	defer func() {
		if o.tracker != nil {
			o.tracker.RecordSubmission(res.Outcome.Code.String(), time.Since(start))
		}
	}()
	if sess.OutOfFunds() {
		res.Outcome = Outcome{Code: OutcomeInsufficientFunds, Detail: "session excluded for this run"}
		return res
	}

	if sess.CanSubmitAPI() {
		if tpl := o.buildTemplate(sess, intent, stakeMinor); tpl != nil {
			if probe {
				// Lock the exact shape at minimum-stake time.
				o.templates.Put(intent.SelectionID, tpl)
			}
			res.Outcome, res.Err = o.submitAPI(ctx, sess, tpl)
			o.applyOutcome(sess, intent, res.Outcome)
			o.record(ctx, sess, intent, res.Outcome)
			return res
		}
	}

	// Degraded path: no endpoint, token or captured template.
	if sess.UI == nil {
		res.Outcome = Outcome{Code: OutcomeFailed, Detail: "no submission path available"}
		o.record(ctx, sess, intent, res.Outcome)
		return res
	}
	pageText, err := sess.UI.Submit(ctx, intent.SelectionID, intent.Selection, stakeMinor)
	if err != nil {
		res.Outcome = Outcome{Code: OutcomeFailed, Detail: err.Error()}
		res.Err = err
	} else {
		res.Outcome = Outcome{Code: ClassifyPageText(pageText), Detail: "ui fallback"}
	}
	o.applyOutcome(sess, intent, res.Outcome)
	o.record(ctx, sess, intent, res.Outcome)
	return res
}

// buildTemplate picks the locked template for the selection when one
// exists, otherwise clones the session's most recent observed request.
// Returns nil when the session has no structural template at all.
func (o *Orchestrator) buildTemplate(sess *Session, intent Intent, stakeMinor int64) *RequestTemplate {
	tpl, locked := o.templates.Get(intent.SelectionID)
	if !locked {
		tpl = sess.LatestTemplate()
	}
	if tpl == nil {
		return nil
	}
	payout := ExpectedPayout(intent.Price, stakeMinor)
	if locked {
		tpl.CustomizeLocked(stakeMinor, payout, sess.AuthToken(), sess.NextSeq())
	} else {
		tpl.Customize(stakeMinor, payout, intent.Price, intent.SelectionID, sess.AuthToken(), sess.NextSeq())
	}
	if tpl.URL == "" {
		tpl.URL = sess.Endpoint()
	}
	return tpl
}

func (o *Orchestrator) submitAPI(ctx context.Context, sess *Session, tpl *RequestTemplate) (Outcome, error) {
	body, err := tpl.Encode()
	if err != nil {
		return Outcome{Code: OutcomeFailed, Detail: err.Error()}, err
	}

	reqCtx, cancel := context.WithTimeout(ctx, o.cfg.SubmitTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, tpl.URL, bytes.NewReader(body))
	if err != nil {
		return Outcome{Code: OutcomeFailed, Detail: err.Error()}, err
	}
	for key, vals := range sess.Headers() {
		for _, v := range vals {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := sess.client.Do(req)
	if err != nil {
		// Timeouts are generic failures, never fatal.
		return Outcome{Code: OutcomeFailed, Detail: err.Error()}, fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return Outcome{Code: OutcomeFailed, Detail: err.Error()}, fmt.Errorf("read response: %w", err)
	}
	return Classify(resp.StatusCode, payload), nil
}

// applyOutcome updates session flags and template validity from a
// classified result.
func (o *Orchestrator) applyOutcome(sess *Session, intent Intent, out Outcome) {
	switch out.Code {
	case OutcomeInsufficientFunds:
		sess.MarkOutOfFunds()
	case OutcomeUnauthorized:
		sess.MarkNeedsAuth()
	case OutcomeMarketUnavailable, OutcomeEventUnavailable:
		// The captured shape points at a dead market; replaying it can
		// only fail the same way.
		o.templates.Invalidate(intent.SelectionID)
	}
}

// refresh forces the provider to re-commit prices for a session.
func (o *Orchestrator) refresh(ctx context.Context, sess *Session) {
	if sess.UI == nil {
		return
	}
	if err := sess.UI.Reload(ctx); err != nil {
		slog.Warn("Session refresh failed", "session", sess.Name, "error", err)
	}
}

// verifyPrice re-locates the selection after the probe and compares
// the observed price to the requested one.
func (o *Orchestrator) verifyPrice(ctx context.Context, sess *Session, intent Intent) bool {
	observed, found := 0, false
	if q, ok := o.store.Lookup(intent.EventID, intent.SelectionID); ok {
		observed, found = q.Price, true
	} else if sess.UI != nil {
		if p, ok, err := sess.UI.LocateSelection(ctx, intent.SelectionID, intent.Selection); err == nil && ok {
			observed, found = p, true
		}
	}
	if !found {
		return false
	}
	diff := observed - intent.Price
	return diff <= o.cfg.PriceTolerance && diff >= -o.cfg.PriceTolerance
}

func (o *Orchestrator) record(ctx context.Context, sess *Session, intent Intent, out Outcome) {
	if o.journal == nil {
		return
	}
	o.journal.Record(ctx, sess.Name, intent, out)
}

func aggregate(results []SessionResult) AggregateResult {
	out := AggregateResult{Results: results}
	accepted := 0
	for _, r := range results {
		if r.Outcome.Code == OutcomeAccepted {
			accepted++
		}
	}
	switch {
	case len(results) > 0 && accepted == len(results):
		out.Status = AggregateAllAccepted
	case accepted > 0:
		out.Status = AggregatePartial
	default:
		out.Status = AggregateAllFailed
	}
	return out
}
