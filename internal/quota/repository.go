package quota

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrQuotaNotFound = errors.New("quota not found")

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreate(ctx context.Context, memberID, subscriptionID, cycleStart, cycleEnd int64, sessionsCap int) (*Quota, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO quotas (member_id, subscription_id, cycle_start, cycle_end, sessions_used, sessions_cap)
		VALUES (?, ?, ?, ?, 0, ?)
		ON CONFLICT(subscription_id, cycle_start) DO NOTHING
	`, memberID, subscriptionID, cycleStart, cycleEnd, sessionsCap)
	if err != nil {
		return nil, err
	}

	q := &Quota{}
	err = tx.GetContext(ctx, q, `
		SELECT * FROM quotas WHERE subscription_id = ? AND cycle_start = ?
	`, subscriptionID, cycleStart)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *repository) GetByCycle(ctx context.Context, subscriptionID, cycleStart int64) (*Quota, error) {
	q := &Quota{}
	err := r.db.GetContext(ctx, q, `
		SELECT * FROM quotas WHERE subscription_id = ? AND cycle_start = ?
	`, subscriptionID, cycleStart)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return q, nil
}

// Increment is an unconditional atomic +1; the capacity check belongs to
// the caller.
func (r *repository) Increment(ctx context.Context, quotaID int64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE quotas SET sessions_used = sessions_used + 1 WHERE id = ?
	`, quotaID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrQuotaNotFound
	}
	return nil
}

func (r *repository) ListBySubscription(ctx context.Context, subscriptionID int64) ([]Quota, error) {
	quotas := []Quota{}
	err := r.db.SelectContext(ctx, &quotas, `
		SELECT * FROM quotas WHERE subscription_id = ? ORDER BY cycle_start
	`, subscriptionID)
	return quotas, err
}
