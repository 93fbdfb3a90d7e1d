package attendance

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) InsertLog(ctx context.Context, memberID *int64, scannedValue string, method Method, timestamp int64, status Status, reason string) (*Log, error) {
	entry := &Log{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO attendance_logs (member_id, scanned_value, method, timestamp, status, reason)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, member_id, scanned_value, method, timestamp, status, reason
	`, memberID, scannedValue, method, timestamp, status, reason).StructScan(entry)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *repository) HasRecentSuccess(ctx context.Context, scannedValue string, since int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM attendance_logs
			WHERE scanned_value = ?
			  AND status IN ('allowed', 'warning')
			  AND timestamp >= ?
		)
	`, scannedValue, since)
	return exists, err
}

func (r *repository) HasSuccessSince(ctx context.Context, memberID, since int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS(
			SELECT 1 FROM attendance_logs
			WHERE member_id = ?
			  AND status IN ('allowed', 'warning')
			  AND timestamp >= ?
		)
	`, memberID, since)
	return exists, err
}

func (r *repository) ListByMember(ctx context.Context, memberID int64, limit int) ([]Log, error) {
	if limit <= 0 {
		limit = 50
	}
	logs := []Log{}
	err := r.db.SelectContext(ctx, &logs, `
		SELECT * FROM attendance_logs
		WHERE member_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`, memberID, limit)
	return logs, err
}
