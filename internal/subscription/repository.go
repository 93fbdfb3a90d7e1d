package subscription

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrFreezeActive         = errors.New("a freeze is already active for this subscription")
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Create deactivates any active subscription for the member before
// inserting. The partial unique index on (member_id) WHERE is_active = 1
// remains the hard guarantee; the deactivation is defense-in-depth.
func (r *repository) Create(ctx context.Context, memberID, startDate, endDate int64, planMonths int, amountPaid *float64, sessionsPerMonth *int) (*Subscription, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE subscriptions SET is_active = 0 WHERE member_id = ? AND is_active = 1
	`, memberID)
	if err != nil {
		return nil, err
	}

	sub, err := insertSubscription(ctx, tx, memberID, startDate, endDate, planMonths, amountPaid, sessionsPerMonth)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return sub, nil
}

// Renew supersedes the member's current subscription in one transaction:
// the open quota cycle is closed at now (sessions_used preserved for
// history), the old row deactivated, the new one inserted active, and its
// first quota cycle eagerly materialized.
func (r *repository) Renew(ctx context.Context, memberID, startDate, endDate int64, planMonths int, amountPaid *float64, sessionsPerMonth *int, now, firstCycleEnd int64, sessionsCap int) (*Subscription, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	old := &Subscription{}
	err = tx.GetContext(ctx, old, `
		SELECT * FROM subscriptions WHERE member_id = ? AND is_active = 1
	`, memberID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if err == nil {
		_, err = tx.ExecContext(ctx, `
			UPDATE quotas
			SET cycle_end = ?
			WHERE subscription_id = ? AND cycle_start <= ? AND cycle_end > ?
		`, now, old.ID, now, now)
		if err != nil {
			return nil, err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE subscriptions SET is_active = 0 WHERE id = ?
		`, old.ID)
		if err != nil {
			return nil, err
		}
	}

	sub, err := insertSubscription(ctx, tx, memberID, startDate, endDate, planMonths, amountPaid, sessionsPerMonth)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO quotas (member_id, subscription_id, cycle_start, cycle_end, sessions_used, sessions_cap)
		VALUES (?, ?, ?, ?, 0, ?)
	`, memberID, sub.ID, startDate, firstCycleEnd, sessionsCap)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return sub, nil
}

// Cancel is idempotent.
func (r *repository) Cancel(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions SET is_active = 0 WHERE id = ?
	`, id)
	return err
}

// Freeze pauses the subscription and extends its end date by the frozen
// days, both in the same transaction so paid duration is preserved.
func (r *repository) Freeze(ctx context.Context, subscriptionID int64, days int, now int64) (*Freeze, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var exists bool
	err = tx.GetContext(ctx, &exists, `
		SELECT EXISTS(SELECT 1 FROM subscriptions WHERE id = ?)
	`, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrSubscriptionNotFound
	}

	err = tx.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM subscription_freezes
			WHERE subscription_id = ? AND start_date <= ? AND end_date > ?
		)
	`, subscriptionID, now, now)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrFreezeActive
	}

	extension := int64(days) * 24 * 60 * 60
	fr := &Freeze{}
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO subscription_freezes (subscription_id, start_date, end_date, days, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id, subscription_id, start_date, end_date, days, created_at
	`, subscriptionID, now, now+extension, days, now).StructScan(fr)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE subscriptions SET end_date = end_date + ? WHERE id = ?
	`, extension, subscriptionID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return fr, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `SELECT * FROM subscriptions WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *repository) GetActiveByMember(ctx context.Context, memberID int64) (*Subscription, error) {
	sub := &Subscription{}
	err := r.db.GetContext(ctx, sub, `
		SELECT * FROM subscriptions WHERE member_id = ? AND is_active = 1
	`, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *repository) ActiveFreeze(ctx context.Context, subscriptionID, now int64) (*Freeze, error) {
	fr := &Freeze{}
	err := r.db.GetContext(ctx, fr, `
		SELECT * FROM subscription_freezes
		WHERE subscription_id = ? AND start_date <= ? AND end_date > ?
		ORDER BY id DESC
		LIMIT 1
	`, subscriptionID, now, now)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fr, nil
}

func (r *repository) ListByMember(ctx context.Context, memberID int64) ([]Subscription, error) {
	subs := []Subscription{}
	err := r.db.SelectContext(ctx, &subs, `
		SELECT * FROM subscriptions WHERE member_id = ? ORDER BY created_at DESC
	`, memberID)
	return subs, err
}

func insertSubscription(ctx context.Context, tx *sqlx.Tx, memberID, startDate, endDate int64, planMonths int, amountPaid *float64, sessionsPerMonth *int) (*Subscription, error) {
	sub := &Subscription{}
	err := tx.QueryRowxContext(ctx, `
		INSERT INTO subscriptions (member_id, start_date, end_date, plan_months, amount_paid, sessions_per_month, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?)
		RETURNING id, member_id, start_date, end_date, plan_months, amount_paid, sessions_per_month, is_active, created_at
	`, memberID, startDate, endDate, planMonths, amountPaid, sessionsPerMonth, time.Now().Unix()).StructScan(sub)
	return sub, err
}
