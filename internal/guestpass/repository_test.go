package guestpass

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func passRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "name", "phone", "price", "created_at", "expires_at", "used_at"})
}

func TestInsert_ReturnsRow(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now().Unix()
	expires := now + 24*60*60

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO guest_passes")).
		WithArgs("GP-000001", "Trial", nil, nil, now, expires).
		WillReturnRows(passRows().AddRow(1, "GP-000001", "Trial", nil, nil, now, expires, nil))

	gp, err := repo.Insert(context.Background(), "GP-000001", "Trial", nil, nil, now, expires)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gp.ID)
	assert.Nil(t, gp.UsedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConsume_GuardedUpdate(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now().Unix()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE guest_passes SET used_at = ? WHERE id = ? AND used_at IS NULL")).
		WithArgs(now, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Consume(context.Background(), 1, now)
	require.NoError(t, err)
	assert.True(t, ok)

	// Second consumer loses: used_at is set, the guard matches no row.
	mock.ExpectExec(regexp.QuoteMeta("UPDATE guest_passes SET used_at = ? WHERE id = ? AND used_at IS NULL")).
		WithArgs(now, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err = repo.Consume(context.Background(), 1, now)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByCode_NilWhenAbsent(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM guest_passes WHERE code = ?")).
		WithArgs("GP-999999").
		WillReturnRows(passRows())

	gp, err := repo.FindByCode(context.Background(), "GP-999999")
	require.NoError(t, err)
	assert.Nil(t, gp)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMaxCodeSerial(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(CAST(SUBSTR(code, 4) AS INTEGER)), 0)")).
		WithArgs("GP-%").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(17))

	max, err := repo.MaxCodeSerial(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(17), max)
	require.NoError(t, mock.ExpectationsWereMet())
}
