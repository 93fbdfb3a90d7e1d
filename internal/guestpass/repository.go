package guestpass

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, code, name string, phone *string, price *float64, createdAt, expiresAt int64) (*GuestPass, error) {
	gp := &GuestPass{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO guest_passes (code, name, phone, price, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, code, name, phone, price, created_at, expires_at, used_at
	`, code, name, phone, price, createdAt, expiresAt).StructScan(gp)
	if err != nil {
		return nil, err
	}
	return gp, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*GuestPass, error) {
	gp := &GuestPass{}
	err := r.db.GetContext(ctx, gp, `SELECT * FROM guest_passes WHERE code = ?`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return gp, nil
}

func (r *repository) MaxCodeSerial(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.GetContext(ctx, &max, `
		SELECT COALESCE(MAX(CAST(SUBSTR(code, 4) AS INTEGER)), 0)
		FROM guest_passes
		WHERE code LIKE ?
	`, CodePrefix+"%")
	return max, err
}

func (r *repository) Consume(ctx context.Context, id, usedAt int64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE guest_passes SET used_at = ? WHERE id = ? AND used_at IS NULL
	`, usedAt, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}
