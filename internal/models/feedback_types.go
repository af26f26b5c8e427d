package models

import "time"

// FeedbackRecord is a free-text message with an optional 1-5 rating.
type FeedbackRecord struct {
	ID        int64     `json:"id" db:"id"`
	Message   string    `json:"message" db:"message"`
	Rating    *int      `json:"rating" db:"rating"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Session   string    `json:"-" db:"user_session"`
}
