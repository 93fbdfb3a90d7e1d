package member

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, params CreateParams, normalizedPhone, code string) (*Member, error) {
	now := time.Now().Unix()
	tier := params.Tier
	if tier == "" {
		tier = "standard"
	}

	m := &Member{}
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO members (name, phone, gender, photo_path, tier, code, address, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, name, phone, gender, photo_path, tier, code, address, created_at, updated_at
	`, params.Name, normalizedPhone, params.Gender, params.PhotoPath, tier, code, params.Address, now, now).StructScan(m)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Member, error) {
	m := &Member{}
	err := r.db.GetContext(ctx, m, `SELECT * FROM members WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Member, error) {
	m := &Member{}
	err := r.db.GetContext(ctx, m, `SELECT * FROM members WHERE code = ?`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repository) GetByPhone(ctx context.Context, phone string) (*Member, error) {
	m := &Member{}
	err := r.db.GetContext(ctx, m, `SELECT * FROM members WHERE phone = ?`, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repository) Update(ctx context.Context, id int64, params UpdateParams, normalizedPhone string) (*Member, error) {
	tier := params.Tier
	if tier == "" {
		tier = "standard"
	}

	m := &Member{}
	err := r.db.QueryRowxContext(ctx, `
		UPDATE members
		SET name = ?, phone = ?, photo_path = ?, tier = ?, address = ?, updated_at = ?
		WHERE id = ?
		RETURNING id, name, phone, gender, photo_path, tier, code, address, created_at, updated_at
	`, params.Name, normalizedPhone, params.PhotoPath, tier, params.Address, time.Now().Unix(), id).StructScan(m)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repository) ReplaceCode(ctx context.Context, id int64, code string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE members SET code = ?, updated_at = ? WHERE id = ?
	`, code, time.Now().Unix(), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// Delete removes the member; subscriptions, quotas, freezes and logs go
// with it through the store's ON DELETE CASCADE.
func (r *repository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = ?`, id)
	return err
}

// MaxCardSerial returns the highest numeric suffix among issued GF- codes,
// 0 when none exist. Bulk imports can insert codes the counter never saw.
func (r *repository) MaxCardSerial(ctx context.Context) (int64, error) {
	var max int64
	err := r.db.GetContext(ctx, &max, `
		SELECT COALESCE(MAX(CAST(SUBSTR(code, 4) AS INTEGER)), 0)
		FROM members
		WHERE code LIKE 'GF-%'
	`)
	return max, err
}
