package store

import (
	"context"
	"fmt"
	"time"

	"github.com/contentai/contentai-golang/internal/database"
	"github.com/contentai/contentai-golang/internal/models"
)

type Feedback struct {
	db *database.DB
}

// Create appends a feedback row using q, which may be a transaction.
func (r *Feedback) Create(ctx context.Context, q database.DBTX, f *models.FeedbackRecord) error {
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	if f.Session == "" {
		f.Session = "default"
	}

	id, err := database.InsertID(ctx, q, r.db.Dialect,
		"INSERT INTO user_feedback (message, rating, created_at, user_session) VALUES (?, ?, ?, ?)",
		f.Message, f.Rating, f.CreatedAt, f.Session)
	if err != nil {
		return fmt.Errorf("failed to insert feedback: %w", err)
	}
	f.ID = id
	return nil
}
