package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"

	"github.com/KAUSHALDIXITDUMMYy/b-sub001/internal/wager"
)

// PostgresConfig holds the journal connection settings.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// AttemptJournal persists every wager attempt to PostgreSQL for audit.
// Writes are best-effort: a journal failure is logged and swallowed so
// it can never fail a wager.
type AttemptJournal struct {
	db *sql.DB
}

// NewAttemptJournal opens the journal and initializes its schema.
func NewAttemptJournal(cfg *PostgresConfig) (*AttemptJournal, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	j := &AttemptJournal{db: db}
	if err := j.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	slog.Info("PostgreSQL attempt journal initialized")
	return j, nil
}

func (j *AttemptJournal) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS wager_attempts (
		id SERIAL PRIMARY KEY,
		session_name VARCHAR(100) NOT NULL,
		event_id BIGINT NOT NULL,
		selection_id VARCHAR(200) NOT NULL,
		price INTEGER NOT NULL,
		stake_minor BIGINT NOT NULL,
		outcome VARCHAR(50) NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		raw_response TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_wager_attempts_selection ON wager_attempts(selection_id);
	CREATE INDEX IF NOT EXISTS idx_wager_attempts_session ON wager_attempts(session_name);
	CREATE INDEX IF NOT EXISTS idx_wager_attempts_created_at ON wager_attempts(created_at DESC);
	`

	_, err := j.db.ExecContext(ctx, query)
	return err
}

// Record implements wager.Journal.
func (j *AttemptJournal) Record(ctx context.Context, session string, intent wager.Intent, outcome wager.Outcome) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	_, err := j.db.ExecContext(writeCtx, `
		INSERT INTO wager_attempts
			(session_name, event_id, selection_id, price, stake_minor, outcome, detail, raw_response)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		session, intent.EventID, intent.SelectionID, intent.Price, intent.StakeMinor,
		outcome.Code.String(), outcome.Detail, string(outcome.Raw))
	if err != nil {
		slog.Warn("Failed to journal wager attempt", "session", session, "selection", intent.SelectionID, "error", err)
	}
}

// Close closes the underlying connection pool.
func (j *AttemptJournal) Close() error {
	return j.db.Close()
}
