package serial

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jmoiron/sqlx"

	"github.com/MahmoudMosalm88/gymflow-sub000/internal/metrics"
)

const (
	// CardCodePrefix is printed on member cards: GF-000042.
	CardCodePrefix = "GF-"

	counterKey = "next_card_serial"
)

var ErrInvalidCount = errors.New("allocation count must be positive")

// Batch is a reserved, contiguous range of card codes.
type Batch struct {
	Start int64
	End   int64
	Codes []string
	First string
	Last  string
}

type Allocator interface {
	// AllocateBatch reserves count contiguous serials in one transaction,
	// so concurrent requests never receive overlapping ranges.
	AllocateBatch(ctx context.Context, count int) (*Batch, error)
	// Next allocates a single code.
	Next(ctx context.Context) (string, error)
}

type allocator struct {
	db *sqlx.DB
}

func NewAllocator(db *sqlx.DB) Allocator {
	return &allocator{db: db}
}

func (a *allocator) AllocateBatch(ctx context.Context, count int) (*Batch, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	tx, err := a.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	next, err := readCounter(ctx, tx)
	if err != nil {
		return nil, err
	}

	// Self-heal: a bulk import may have inserted higher-numbered codes
	// directly, leaving the counter behind.
	var maxIssued int64
	err = tx.GetContext(ctx, &maxIssued, `
		SELECT COALESCE(MAX(CAST(SUBSTR(code, 4) AS INTEGER)), 0)
		FROM members
		WHERE code LIKE ?
	`, CardCodePrefix+"%")
	if err != nil {
		return nil, err
	}
	if maxIssued >= next {
		next = maxIssued + 1
	}

	batch := &Batch{
		Start: next,
		End:   next + int64(count) - 1,
		Codes: make([]string, 0, count),
	}
	for n := batch.Start; n <= batch.End; n++ {
		batch.Codes = append(batch.Codes, Format(n))
	}
	batch.First = batch.Codes[0]
	batch.Last = batch.Codes[count-1]

	if err := writeCounter(ctx, tx, batch.End+1); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	metrics.RecordCardCodes(count)
	return batch, nil
}

func (a *allocator) Next(ctx context.Context) (string, error) {
	batch, err := a.AllocateBatch(ctx, 1)
	if err != nil {
		return "", err
	}
	return batch.First, nil
}

// Format renders a serial as the zero-padded card code.
func Format(n int64) string {
	return fmt.Sprintf("%s%06d", CardCodePrefix, n)
}

func readCounter(ctx context.Context, tx *sqlx.Tx) (int64, error) {
	var value string
	err := tx.GetContext(ctx, &value, `SELECT value FROM settings WHERE key = ?`, counterKey)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}

	var n int64
	if err := json.Unmarshal([]byte(value), &n); err == nil {
		return n, nil
	}
	n, err = strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 1, nil
	}
	return n, nil
}

func writeCounter(ctx context.Context, tx *sqlx.Tx, n int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, counterKey, strconv.FormatInt(n, 10))
	return err
}
