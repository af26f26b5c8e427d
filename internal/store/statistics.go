package store

import (
	"context"
	"fmt"
	"time"

	"github.com/contentai/contentai-golang/internal/database"
	"github.com/contentai/contentai-golang/internal/models"
)

// statisticsID is the primary key of the singleton row.
const statisticsID = 1

// Counter names one of the running totals.
type Counter string

const (
	CounterIdeas    Counter = "ideas"
	CounterScripts  Counter = "script"
	CounterFeedback Counter = "feedback"
)

// counterColumns whitelists the columns an increment may touch.
var counterColumns = map[Counter]string{
	CounterIdeas:    "total_ideas_generated",
	CounterScripts:  "total_scripts_generated",
	CounterFeedback: "total_feedbacks",
}

// CounterFor maps a generation kind onto its counter.
func CounterFor(kind models.GenerationKind) Counter {
	if kind == models.KindScript {
		return CounterScripts
	}
	return CounterIdeas
}

// Statistics aggregates running totals in a single row. Increments are a
// single UPDATE ... SET col = col + 1, so concurrent callers never lose counts.
type Statistics struct {
	db  *database.DB
	now func() time.Time
}

func (r *Statistics) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now().UTC()
}

// Increment bumps one counter by one using q, which may be a transaction.
// The row is created if it does not exist yet.
func (r *Statistics) Increment(ctx context.Context, q database.DBTX, c Counter) error {
	col, ok := counterColumns[c]
	if !ok {
		return fmt.Errorf("unknown statistics counter %q", c)
	}

	update := database.Rebind(r.db.Dialect,
		"UPDATE app_statistics SET "+col+" = "+col+" + 1, last_updated = ? WHERE id = ?")

	res, err := q.ExecContext(ctx, update, r.clock(), statisticsID)
	if err != nil {
		return fmt.Errorf("failed to increment %s: %w", col, err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	if err := r.ensure(ctx, q); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, update, r.clock(), statisticsID); err != nil {
		return fmt.Errorf("failed to increment %s: %w", col, err)
	}
	return nil
}

// Get returns the snapshot, creating the zero row on first access.
func (r *Statistics) Get(ctx context.Context) (*models.StatisticsSnapshot, error) {
	if err := r.ensure(ctx, r.db); err != nil {
		return nil, err
	}

	var s models.StatisticsSnapshot
	err := r.db.QueryRowContext(ctx, database.Rebind(r.db.Dialect, `
		SELECT total_ideas_generated, total_scripts_generated, total_feedbacks, last_updated
		FROM app_statistics WHERE id = ?`), statisticsID).
		Scan(&s.TotalIdeasGenerated, &s.TotalScriptsGenerated, &s.TotalFeedbacks, &s.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("failed to load statistics: %w", err)
	}
	return &s, nil
}

// Ensure creates the singleton row if it is missing.
func (r *Statistics) Ensure(ctx context.Context) error {
	return r.ensure(ctx, r.db)
}

// ensure inserts the zero row, ignoring an existing one without raising an
// error so it is safe inside a Postgres transaction.
func (r *Statistics) ensure(ctx context.Context, q database.DBTX) error {
	var stmt string
	switch r.db.Dialect {
	case database.MySQL:
		stmt = "INSERT IGNORE INTO app_statistics (id, last_updated) VALUES (?, ?)"
	case database.Postgres:
		stmt = "INSERT INTO app_statistics (id, last_updated) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING"
	default:
		stmt = "INSERT OR IGNORE INTO app_statistics (id, last_updated) VALUES (?, ?)"
	}
	if _, err := q.ExecContext(ctx, stmt, statisticsID, r.clock()); err != nil {
		return fmt.Errorf("failed to create statistics row: %w", err)
	}
	return nil
}
