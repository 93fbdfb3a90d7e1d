package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Load(ctx context.Context) (*Settings, error) {
	rows := []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}{}
	err := r.db.SelectContext(ctx, &rows, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}

	s := Defaults()
	for _, row := range rows {
		n, err := parseIntValue(row.Value)
		if err != nil {
			// Unparseable values fall back to the documented default.
			continue
		}
		switch row.Key {
		case KeySessionCapMale:
			s.SessionCapMale = int(n)
		case KeySessionCapFemale:
			s.SessionCapFemale = int(n)
		case KeyScanCooldownSeconds:
			s.ScanCooldownSeconds = int(n)
		case KeyWarningDaysBeforeExpiry:
			s.WarningDaysBeforeExpiry = int(n)
		case KeyWarningSessionsRemaining:
			s.WarningSessionsRemaining = int(n)
		case KeyNextCardSerial:
			s.NextCardSerial = n
		}
	}
	return s, nil
}

func (r *repository) GetInt(ctx context.Context, key string, defaultValue int) (int, error) {
	var value string
	err := r.db.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return defaultValue, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := parseIntValue(value)
	if err != nil {
		return defaultValue, nil
	}
	return int(n), nil
}

func (r *repository) SetInt(ctx context.Context, key string, value int) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, string(encoded))
	return err
}

// parseIntValue accepts both bare JSON numbers and quoted numeric strings,
// which older exports wrote into the table.
func parseIntValue(value string) (int64, error) {
	var n int64
	if err := json.Unmarshal([]byte(value), &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal([]byte(value), &s); err == nil {
		return strconv.ParseInt(s, 10, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}
