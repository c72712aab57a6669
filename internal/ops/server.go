package ops

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/pkg/perf"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/quotes"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/registry"
	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/wager"
)

// Config holds the ops server settings.
type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
}

// Notifier receives aggregate results for operator alerting. Nil-safe
// implementations are expected.
type Notifier interface {
	WagerResult(intent wager.Intent, res wager.AggregateResult)
	SessionNeedsAuth(sessionName string)
}

// Server exposes live state for operators (events, quotes, session
// health) and the two wager entry points.
type Server struct {
	registry     *registry.Registry
	store        *quotes.Store
	sessions     []*wager.Session
	orchestrator *wager.Orchestrator
	notifier     Notifier
	tracker      *perf.Tracker
}

// NewServer creates the ops server over the given state. notifier and
// tracker may be nil.
func NewServer(reg *registry.Registry, store *quotes.Store, sessions []*wager.Session, orch *wager.Orchestrator, notifier Notifier, tracker *perf.Tracker) *Server {
	return &Server{registry: reg, store: store, sessions: sessions, orchestrator: orch, notifier: notifier, tracker: tracker}
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context, cfg Config) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", s.handlePing)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/quotes", s.handleQuotes)
	mux.HandleFunc("/sessions", s.handleSessions)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/wager", s.handleWager)
	mux.HandleFunc("/lock", s.handleLock)

	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("Ops server listening", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]any{
		"status":     "ok",
		"events":     s.registry.Len(),
		"generation": s.registry.Generation(),
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.registry.Events())
}

func (s *Server) handleQuotes(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(r.URL.Query().Get("event"), 10, 64)
	if err != nil {
		http.Error(w, "event query parameter is required", http.StatusBadRequest)
		return
	}
	writeJSON(w, s.store.Snapshot(eventID))
}

func (s *Server) handleSessions(w http.ResponseWriter, _ *http.Request) {
	type sessionView struct {
		Name       string `json:"name"`
		APIReady   bool   `json:"api_ready"`
		OutOfFunds bool   `json:"out_of_funds"`
		NeedsAuth  bool   `json:"needs_auth"`
	}
	views := make([]sessionView, 0, len(s.sessions))
	for _, sess := range s.sessions {
		views = append(views, sessionView{
			Name:       sess.Name,
			APIReady:   sess.CanSubmitAPI(),
			OutOfFunds: sess.OutOfFunds(),
			NeedsAuth:  sess.NeedsAuth(),
		})
	}
	writeJSON(w, views)
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	if s.tracker == nil {
		writeJSON(w, perf.Snapshot{})
		return
	}
	writeJSON(w, s.tracker.Stats())
}

// wagerRequest is the operator-facing intent payload.
type wagerRequest struct {
	EventID     int64  `json:"event_id"`
	SelectionID string `json:"selection_id"`
	Selection   string `json:"selection"`
	Price       int    `json:"price"`
	StakeMinor  int64  `json:"stake_minor"`
}

func (r wagerRequest) intent() wager.Intent {
	return wager.Intent{
		EventID:     r.EventID,
		SelectionID: r.SelectionID,
		Selection:   r.Selection,
		Price:       r.Price,
		StakeMinor:  r.StakeMinor,
	}
}

func (s *Server) handleWager(w http.ResponseWriter, r *http.Request) {
	s.runIntent(w, r, func(intent wager.Intent) wager.AggregateResult {
		return s.orchestrator.SubmitWager(r.Context(), intent, s.sessions)
	})
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	s.runIntent(w, r, func(intent wager.Intent) wager.AggregateResult {
		return s.orchestrator.LockAndLoad(r.Context(), intent, s.sessions)
	})
}

func (s *Server) runIntent(w http.ResponseWriter, r *http.Request, run func(wager.Intent) wager.AggregateResult) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req wagerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.SelectionID == "" || req.Price == 0 {
		http.Error(w, "selection_id and price are required", http.StatusBadRequest)
		return
	}

	intent := req.intent()
	res := run(intent)
	if s.notifier != nil {
		s.notifier.WagerResult(intent, res)
		for _, sr := range res.Results {
			if sr.Outcome.Code == wager.OutcomeUnauthorized {
				s.notifier.SessionNeedsAuth(sr.Session)
			}
		}
	}

	type resultView struct {
		Session string `json:"session"`
		Outcome string `json:"outcome"`
		Detail  string `json:"detail,omitempty"`
	}
	views := make([]resultView, 0, len(res.Results))
	for _, sr := range res.Results {
		views = append(views, resultView{Session: sr.Session, Outcome: sr.Outcome.Code.String(), Detail: sr.Outcome.Detail})
	}
	writeJSON(w, map[string]any{
		"status":  res.Status.String(),
		"results": views,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to encode ops response", "error", err)
	}
}
