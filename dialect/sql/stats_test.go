package sql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/arbor/dialect"
)

func newStatsDriver(t *testing.T, opts ...StatsOption) (*StatsDriver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStatsDriver(OpenDB(dialect.SQLite, db), opts...), mock
}

func TestStatsDriverCounters(t *testing.T) {
	drv, mock := newStatsDriver(t)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewResult(1, 1))

	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT 1", []any{}, rows))
	require.NoError(t, rows.Close())
	require.NoError(t, drv.Exec(context.Background(), "INSERT INTO t DEFAULT VALUES", []any{}, nil))

	s := drv.QueryStats().Stats()
	assert.Equal(t, int64(1), s.TotalQueries)
	assert.Equal(t, int64(1), s.TotalExecs)
	assert.Equal(t, int64(0), s.Errors)
	assert.Greater(t, s.TotalDuration, time.Duration(0))
	require.NoError(t, mock.ExpectationsWereMet())

	drv.QueryStats().Reset()
	assert.Equal(t, int64(0), drv.QueryStats().Stats().TotalQueries)
}

func TestStatsDriverCountsErrors(t *testing.T) {
	drv, mock := newStatsDriver(t)

	mock.ExpectQuery("SELECT boom").WillReturnError(assert.AnError)
	rows := &Rows{}
	require.Error(t, drv.Query(context.Background(), "SELECT boom", []any{}, rows))
	assert.Equal(t, int64(1), drv.QueryStats().Stats().Errors)
}

func TestStatsDriverSlowQueryHook(t *testing.T) {
	var slow []string
	drv, mock := newStatsDriver(t,
		WithSlowThreshold(0), // every query is slow
		WithSlowQueryHook(func(_ context.Context, query string, _ []any, _ time.Duration) {
			slow = append(slow, query)
		}),
	)

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT 1", []any{}, rows))
	require.NoError(t, rows.Close())

	assert.Equal(t, []string{"SELECT 1"}, slow)
	assert.Equal(t, int64(1), drv.QueryStats().Stats().SlowQueries)
}

func TestStatsDriverThreshold(t *testing.T) {
	drv, _ := newStatsDriver(t, WithSlowThreshold(time.Second))
	assert.Equal(t, time.Second, drv.SlowThreshold())
	drv.SetSlowThreshold(2 * time.Second)
	assert.Equal(t, 2*time.Second, drv.SlowThreshold())
}

func TestStatsTx(t *testing.T) {
	drv, mock := newStatsDriver(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := drv.Tx(context.Background())
	require.NoError(t, err)
	require.NoError(t, tx.Exec(context.Background(), "UPDATE t SET x = ?", []any{1}, nil))
	require.NoError(t, tx.Commit())

	assert.Equal(t, int64(1), drv.QueryStats().Stats().TotalExecs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsSnapshotString(t *testing.T) {
	s := StatsSnapshot{TotalQueries: 4, TotalExecs: 1, TotalDuration: 10 * time.Millisecond}
	assert.Equal(t, 2*time.Millisecond, s.AvgQueryDuration())
	assert.Contains(t, s.String(), "queries=4")

	assert.Equal(t, time.Duration(0), StatsSnapshot{}.AvgQueryDuration())
}
