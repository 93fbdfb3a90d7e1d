package quota

import (
	"context"
	"regexp"
	"testing"

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

func quotaRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "member_id", "subscription_id", "cycle_start", "cycle_end", "sessions_used", "sessions_cap"})
}

func TestGetOrCreate_InsertsThenReads(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO quotas")).
		WithArgs(int64(1), int64(2), int64(1000), int64(2000), 26).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM quotas WHERE subscription_id = ? AND cycle_start = ?")).
		WithArgs(int64(2), int64(1000)).
		WillReturnRows(quotaRows().AddRow(5, 1, 2, 1000, 2000, 0, 26))
	mock.ExpectCommit()

	q, err := repo.GetOrCreate(context.Background(), 1, 2, 1000, 2000, 26)
	require.NoError(t, err)
	assert.Equal(t, int64(5), q.ID)
	assert.Equal(t, 0, q.SessionsUsed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreate_ConflictReturnsExistingRow(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	// ON CONFLICT DO NOTHING: insert affects no rows, the read still finds
	// the row the earlier writer created.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO quotas")).
		WithArgs(int64(1), int64(2), int64(1000), int64(2000), 26).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM quotas WHERE subscription_id = ? AND cycle_start = ?")).
		WithArgs(int64(2), int64(1000)).
		WillReturnRows(quotaRows().AddRow(5, 1, 2, 1000, 2000, 4, 26))
	mock.ExpectCommit()

	q, err := repo.GetOrCreate(context.Background(), 1, 2, 1000, 2000, 26)
	require.NoError(t, err)
	assert.Equal(t, 4, q.SessionsUsed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrement(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE quotas SET sessions_used = sessions_used + 1 WHERE id = ?")).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Increment(context.Background(), 5))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE quotas SET sessions_used = sessions_used + 1 WHERE id = ?")).
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Increment(context.Background(), 6)
	assert.ErrorIs(t, err, ErrQuotaNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByCycle_NilWhenAbsent(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM quotas WHERE subscription_id = ? AND cycle_start = ?")).
		WithArgs(int64(2), int64(1000)).
		WillReturnRows(quotaRows())

	q, err := repo.GetByCycle(context.Background(), 2, 1000)
	require.NoError(t, err)
	assert.Nil(t, q)
	require.NoError(t, mock.ExpectationsWereMet())
}
