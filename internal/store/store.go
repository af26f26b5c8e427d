// Package store holds the SQL repositories. Queries are written with '?'
// placeholders and rebound per dialect.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/contentai/contentai-golang/internal/database"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Store groups the repositories over one pool.
type Store struct {
	DB          *database.DB
	Users       *Users
	Generations *Generations
	Feedback    *Feedback
	Statistics  *Statistics
}

func New(db *database.DB) *Store {
	return &Store{
		DB:          db,
		Users:       &Users{db: db},
		Generations: &Generations{db: db},
		Feedback:    &Feedback{db: db},
		Statistics:  &Statistics{db: db},
	}
}

// InTx runs fn inside a single transaction.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx database.DBTX) error) error {
	return database.WithTx(ctx, s.DB, fn)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
