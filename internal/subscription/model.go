package subscription

import "time"

// CycleSeconds is the length of one billing/usage cycle. Cycles are fixed
// 30-day windows inside the subscription; the contract end date itself uses
// calendar months.
const CycleSeconds int64 = 30 * 24 * 60 * 60

type Subscription struct {
	ID               int64    `db:"id" json:"id"`
	MemberID         int64    `db:"member_id" json:"member_id"`
	StartDate        int64    `db:"start_date" json:"start_date"`
	EndDate          int64    `db:"end_date" json:"end_date"`
	PlanMonths       int      `db:"plan_months" json:"plan_months"`
	AmountPaid       *float64 `db:"amount_paid" json:"amount_paid,omitempty"`
	SessionsPerMonth *int     `db:"sessions_per_month" json:"sessions_per_month,omitempty"`
	IsActive         bool     `db:"is_active" json:"is_active"`
	CreatedAt        int64    `db:"created_at" json:"created_at"`
}

// Started reports whether the subscription has begun at the given instant.
func (s *Subscription) Started(now time.Time) bool {
	return now.Unix() >= s.StartDate
}

// Expired reports whether the subscription has run out at the given instant.
func (s *Subscription) Expired(now time.Time) bool {
	return now.Unix() >= s.EndDate
}

// DaysRemaining is the number of whole days until expiry, negative once past.
func (s *Subscription) DaysRemaining(now time.Time) int {
	return int((s.EndDate - now.Unix()) / (24 * 60 * 60))
}

type Freeze struct {
	ID             int64 `db:"id" json:"id"`
	SubscriptionID int64 `db:"subscription_id" json:"subscription_id"`
	StartDate      int64 `db:"start_date" json:"start_date"`
	EndDate        int64 `db:"end_date" json:"end_date"`
	Days           int   `db:"days" json:"days"`
	CreatedAt      int64 `db:"created_at" json:"created_at"`
}

// CreateParams describes a new contract. StartDate nil defaults to now.
type CreateParams struct {
	MemberID         int64 `validate:"required"`
	PlanMonths       int   `validate:"required,oneof=1 3 6 12"`
	StartDate        *time.Time
	AmountPaid       *float64 `validate:"omitempty,gte=0"`
	SessionsPerMonth *int     `validate:"omitempty,gt=0"`
}

// AddCalendarMonths advances by real calendar months, clamping the day to
// the target month's length: Jan 31 + 1 month = Feb 28 (29 in leap years),
// never Mar 2.
func AddCalendarMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	first := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}
