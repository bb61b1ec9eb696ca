package sql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/syssam/veloxext/dialect"
)

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db))
	assert.Equal(t, dialect.SQLite, drv.Dialect())

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	rows := &Rows{}
	require.NoError(t, drv.Query(ctx, "SELECT id FROM customers", []any{}, rows))
	require.NoError(t, rows.Close())

	mock.ExpectExec("DELETE").WillReturnError(errors.New("locked"))
	require.Error(t, drv.Exec(ctx, "DELETE FROM customers", []any{}, nil))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	tx, err := drv.Tx(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Exec(ctx, "INSERT INTO customers (name) VALUES ('x')", []any{}, nil))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())

	s := drv.QueryStats().Snapshot()
	assert.Equal(t, int64(1), s.Queries)
	assert.Equal(t, int64(2), s.Execs)
	assert.Equal(t, int64(1), s.Errors)
	assert.Zero(t, s.Slow)
	assert.Contains(t, s.String(), "queries=1 execs=2")
}

func TestStatsDriverSlowQueries(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	drv := NewStatsDriver(
		NewDebugDriver(OpenDB(dialect.Postgres, db), nil),
		WithSlowThreshold(time.Nanosecond),
		WithSlowQueryLog(zap.New(core)),
	)
	mock.ExpectQuery("SELECT").WithArgs(7).
		WillDelayFor(time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	rows := &Rows{}
	require.NoError(t, drv.Query(context.Background(), "SELECT id FROM customers WHERE id = $1", []any{7}, rows))
	require.NoError(t, rows.Close())

	assert.Equal(t, int64(1), drv.QueryStats().Snapshot().Slow)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "slow query", entry.Message)
	assert.Equal(t, "SELECT id FROM customers WHERE id = $1", entry.ContextMap()["sql"])
}

func TestStatsSnapshotAvg(t *testing.T) {
	assert.Zero(t, StatsSnapshot{}.Avg())
	assert.Equal(t, 2*time.Second, StatsSnapshot{Queries: 2, Execs: 1, Duration: 6 * time.Second}.Avg())
}
