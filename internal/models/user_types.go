package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a registered account. Name and LastLogin are nullable.
type User struct {
	ID           int64      `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Name         *string    `json:"name" db:"name"`
	IsPremium    bool       `json:"is_premium" db:"is_premium"`
	IsAdmin      bool       `json:"is_admin" db:"is_admin"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	LastLogin    *time.Time `json:"last_login" db:"last_login"`
}

// Tier values reported to clients.
const (
	TierAnonymous = "anonymous"
	TierFree      = "free"
	TierPremium   = "premium"
	TierAdmin     = "admin"
)

// Tier returns the usage tier of the user.
func (u *User) Tier() string {
	switch {
	case u == nil:
		return TierAnonymous
	case u.IsAdmin:
		return TierAdmin
	case u.IsPremium:
		return TierPremium
	default:
		return TierFree
	}
}

// Unlimited reports whether the daily generation quota does not apply.
func (u *User) Unlimited() bool {
	return u != nil && (u.IsPremium || u.IsAdmin)
}

// Password Helper (Standard)
type Password struct {
	Plaintext *string
	Hash      string
}

func (p *Password) Set(plaintextPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintextPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Hash = string(hash)
	p.Plaintext = &plaintextPassword
	return nil
}

func (p *Password) Matches(plaintextPassword string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(p.Hash), []byte(plaintextPassword))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
