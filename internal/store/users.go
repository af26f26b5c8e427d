package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/contentai/contentai-golang/internal/database"
	"github.com/contentai/contentai-golang/internal/models"
)

type Users struct {
	db *database.DB
}

const userColumns = "id, email, password_hash, name, is_premium, is_admin, created_at, last_login"

func (r *Users) q(query string) string {
	return database.Rebind(r.db.Dialect, query)
}

// Create inserts u and fills in its ID. A taken email yields ErrDuplicate.
func (r *Users) Create(ctx context.Context, u *models.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	id, err := database.InsertID(ctx, r.db, r.db.Dialect,
		`INSERT INTO users (email, password_hash, name, is_premium, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.Email, u.PasswordHash, u.Name, u.IsPremium, u.IsAdmin, u.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	u.ID = id
	return nil
}

func (r *Users) GetByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, r.q("SELECT "+userColumns+" FROM users WHERE id = ?"), id)
	return scanUser(row)
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, r.q("SELECT "+userColumns+" FROM users WHERE email = ?"), email)
	return scanUser(row)
}

// EmailExists is a cheap pre-check before hashing a password on register.
func (r *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.q("SELECT COUNT(*) FROM users WHERE email = ?"), email).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return n > 0, nil
}

func (r *Users) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.ExecContext(ctx, r.q("UPDATE users SET last_login = ? WHERE id = ?"), at, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// SetFlags updates the premium and/or admin flags; nil leaves a flag as is.
func (r *Users) SetFlags(ctx context.Context, id int64, premium, admin *bool) (*models.User, error) {
	u, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if premium != nil {
		u.IsPremium = *premium
	}
	if admin != nil {
		u.IsAdmin = *admin
	}

	_, err = r.db.ExecContext(ctx, r.q("UPDATE users SET is_premium = ?, is_admin = ? WHERE id = ?"),
		u.IsPremium, u.IsAdmin, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update user flags: %w", err)
	}
	return u, nil
}

func (r *Users) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *Users) Counts(ctx context.Context) (models.UserCounts, error) {
	var c models.UserCounts
	err := r.db.QueryRowContext(ctx, r.q(`
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN is_premium = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN is_admin = ? THEN 1 ELSE 0 END), 0)
		FROM users`), true, true).Scan(&c.Total, &c.Premium, &c.Admins)
	if err != nil {
		return c, fmt.Errorf("failed to count users: %w", err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		name      sql.NullString
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &name, &u.IsPremium, &u.IsAdmin, &u.CreatedAt, &lastLogin)
	if err != nil {
		return nil, notFound(err)
	}
	if name.Valid {
		u.Name = &name.String
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	return &u, nil
}
