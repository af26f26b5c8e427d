// Package quota decides whether a caller may run another generation today.
package quota

import (
	"context"
	"time"

	"github.com/contentai/contentai-golang/internal/models"
)

// Unlimited is reported as the limit of tiers without a daily cap.
const Unlimited = -1

// Counter counts today's generation records for a caller.
type Counter interface {
	CountForUser(ctx context.Context, userID int64, from, to time.Time) (int, error)
	CountAnonymous(ctx context.Context, session string, from, to time.Time) (int, error)
}

// Limits are the daily caps per tier.
type Limits struct {
	AnonymousDaily int
	FreeDaily      int
}

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed      bool
	Used         int
	Limit        int
	Tier         string
	RequiresAuth bool
}

// Remaining is how many generations are left after this one, or Unlimited.
func (d Decision) Remaining() int {
	if d.Limit == Unlimited {
		return Unlimited
	}
	left := d.Limit - d.Used - 1
	if left < 0 {
		return 0
	}
	return left
}

// Details renders the fields clients see on a quota-exceeded response.
func (d Decision) Details() map[string]any {
	details := map[string]any{
		"limit": d.Limit,
		"used":  d.Used,
		"tier":  d.Tier,
	}
	if d.RequiresAuth {
		details["requires_auth"] = true
	}
	return details
}

// Ledger is read-only: it never records usage itself, so two concurrent
// requests from one caller can both pass the check before either persists.
type Ledger struct {
	counter Counter
	limits  Limits
	now     func() time.Time
}

func NewLedger(counter Counter, limits Limits) *Ledger {
	return &Ledger{counter: counter, limits: limits, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// Check counts the caller's records for the current UTC day. A nil user is
// anonymous and identified by session.
func (l *Ledger) Check(ctx context.Context, user *models.User, session string) (Decision, error) {
	d := Decision{Tier: user.Tier()}
	if user.Unlimited() {
		d.Allowed = true
		d.Limit = Unlimited
		return d, nil
	}

	from, to := DayBounds(l.now())

	var err error
	if user == nil {
		d.Limit = l.limits.AnonymousDaily
		d.RequiresAuth = true
		d.Used, err = l.counter.CountAnonymous(ctx, session, from, to)
	} else {
		d.Limit = l.limits.FreeDaily
		d.Used, err = l.counter.CountForUser(ctx, user.ID, from, to)
	}
	if err != nil {
		return Decision{}, err
	}

	d.Allowed = d.Used < d.Limit
	return d, nil
}

// DayBounds returns [midnight, next midnight) in UTC around t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
