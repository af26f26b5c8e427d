package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/contentai/contentai-golang/internal/database"
	"github.com/contentai/contentai-golang/internal/models"
)

type Generations struct {
	db *database.DB
}

const generationColumns = "id, type, data, created_at, user_id, user_session"

func (r *Generations) q(query string) string {
	return database.Rebind(r.db.Dialect, query)
}

// Create appends a record using q, which may be a transaction.
func (r *Generations) Create(ctx context.Context, q database.DBTX, rec *models.GenerationRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	id, err := database.InsertID(ctx, q, r.db.Dialect,
		`INSERT INTO generation_history (type, data, created_at, user_id, user_session)
		VALUES (?, ?, ?, ?, ?)`,
		string(rec.Kind), string(rec.Data), rec.CreatedAt, rec.UserID, rec.Session)
	if err != nil {
		return fmt.Errorf("failed to insert generation record: %w", err)
	}
	rec.ID = id
	return nil
}

// CountForUser counts the user's records created in [from, to).
func (r *Generations) CountForUser(ctx context.Context, userID int64, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.q(`
		SELECT COUNT(*) FROM generation_history
		WHERE user_id = ? AND created_at >= ? AND created_at < ?`),
		userID, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count user generations: %w", err)
	}
	return n, nil
}

// CountAnonymous counts records with no user for session created in [from, to).
func (r *Generations) CountAnonymous(ctx context.Context, session string, from, to time.Time) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.q(`
		SELECT COUNT(*) FROM generation_history
		WHERE user_id IS NULL AND user_session = ? AND created_at >= ? AND created_at < ?`),
		session, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count anonymous generations: %w", err)
	}
	return n, nil
}

// ListForUser returns one page of the user's records, newest first, and the total.
func (r *Generations) ListForUser(ctx context.Context, userID int64, limit, offset int) ([]models.GenerationRecord, int, error) {
	return r.list(ctx, "user_id = ?", []any{userID}, limit, offset)
}

// ListAnonymous returns one page of a session's anonymous records.
func (r *Generations) ListAnonymous(ctx context.Context, session string, limit, offset int) ([]models.GenerationRecord, int, error) {
	return r.list(ctx, "user_id IS NULL AND user_session = ?", []any{session}, limit, offset)
}

// ListAll returns one page of every record. Used by the admin export.
func (r *Generations) ListAll(ctx context.Context, limit, offset int) ([]models.GenerationRecord, int, error) {
	return r.list(ctx, "1 = 1", nil, limit, offset)
}

func (r *Generations) list(ctx context.Context, where string, args []any, limit, offset int) ([]models.GenerationRecord, int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, r.q("SELECT COUNT(*) FROM generation_history WHERE "+where), args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count generation history: %w", err)
	}

	query := "SELECT " + generationColumns + " FROM generation_history WHERE " + where +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, r.q(query), append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list generation history: %w", err)
	}
	defer rows.Close()

	records := []models.GenerationRecord{}
	for rows.Next() {
		var (
			rec     models.GenerationRecord
			kind    string
			data    string
			userID  sql.NullInt64
			session sql.NullString
		)
		if err := rows.Scan(&rec.ID, &kind, &data, &rec.CreatedAt, &userID, &session); err != nil {
			return nil, 0, fmt.Errorf("failed to scan generation record: %w", err)
		}
		rec.Kind = models.GenerationKind(kind)
		rec.Data = []byte(data)
		if userID.Valid {
			id := userID.Int64
			rec.UserID = &id
		}
		rec.Session = session.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating generation rows: %w", err)
	}
	return records, total, nil
}
