package sql

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/syssam/veloxext/dialect"
)

// DefaultSlowThreshold is the slow query threshold of a StatsDriver.
const DefaultSlowThreshold = 100 * time.Millisecond

// QueryStats counts the statements run through a StatsDriver.
type QueryStats struct {
	queries  atomic.Int64
	execs    atomic.Int64
	duration atomic.Int64 // nanoseconds
	slow     atomic.Int64
	errors   atomic.Int64
}

// Snapshot returns the current counters.
func (s *QueryStats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Queries:  s.queries.Load(),
		Execs:    s.execs.Load(),
		Duration: time.Duration(s.duration.Load()),
		Slow:     s.slow.Load(),
		Errors:   s.errors.Load(),
	}
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	Queries  int64
	Execs    int64
	Duration time.Duration
	Slow     int64
	Errors   int64
}

// Avg returns the mean statement duration.
func (s StatsSnapshot) Avg() time.Duration {
	n := s.Queries + s.Execs
	if n == 0 {
		return 0
	}
	return s.Duration / time.Duration(n)
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.Queries, s.Execs, s.Duration, s.Avg(), s.Slow, s.Errors)
}

// SlowQueryHook is called for every statement slower than the threshold.
type SlowQueryHook func(ctx context.Context, query string, args []any, d time.Duration)

// StatsDriver wraps a dialect.Driver and records statement statistics.
// It can wrap a DebugDriver.
type StatsDriver struct {
	dialect.Driver
	stats     *QueryStats
	threshold time.Duration
	hook      SlowQueryHook
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the slow query threshold. Non-positive values
// keep DefaultSlowThreshold.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		if d > 0 {
			s.threshold = d
		}
	}
}

// WithSlowQueryHook sets the slow query callback.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) { s.hook = hook }
}

// WithSlowQueryLog logs slow queries at warn level.
func WithSlowQueryLog(log *zap.Logger) StatsOption {
	return WithSlowQueryHook(func(_ context.Context, query string, args []any, d time.Duration) {
		log.Warn("slow query", zap.Duration("duration", d), zap.String("sql", query), zap.Any("args", args))
	})
}

// NewStatsDriver wraps drv with statistics collection.
//
//	drv, _ := sql.Open(dialect.Postgres, "postgres", dsn)
//	stats := sql.NewStatsDriver(drv, sql.WithSlowQueryLog(logger))
//	...
//	logger.Info("db", zap.Stringer("stats", stats.QueryStats().Snapshot()))
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{Driver: drv, stats: &QueryStats{}, threshold: DefaultSlowThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the live counters.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// Query executes a query and records it.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Query(ctx, query, args, v)
	d.record(ctx, query, args, start, err, true)
	return err
}

// Exec executes a statement and records it.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := d.Driver.Exec(ctx, query, args, v)
	d.record(ctx, query, args, start, err, false)
	return err
}

func (d *StatsDriver) record(ctx context.Context, query string, args any, start time.Time, err error, isQuery bool) {
	elapsed := time.Since(start)
	if isQuery {
		d.stats.queries.Add(1)
	} else {
		d.stats.execs.Add(1)
	}
	d.stats.duration.Add(int64(elapsed))
	if err != nil {
		d.stats.errors.Add(1)
	}
	if elapsed <= d.threshold {
		return
	}
	d.stats.slow.Add(1)
	if d.hook != nil {
		argv, _ := args.([]any)
		d.hook(ctx, query, argv, elapsed)
	}
}

// Tx starts a transaction whose statements are recorded too.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsTx{Tx: tx, driver: d}, nil
}

// StatsTx is a transaction of a StatsDriver.
type StatsTx struct {
	dialect.Tx
	driver *StatsDriver
}

// Query executes a query within the transaction and records it.
func (tx *StatsTx) Query(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Query(ctx, query, args, v)
	tx.driver.record(ctx, query, args, start, err, true)
	return err
}

// Exec executes a statement within the transaction and records it.
func (tx *StatsTx) Exec(ctx context.Context, query string, args, v any) error {
	start := time.Now()
	err := tx.Tx.Exec(ctx, query, args, v)
	tx.driver.record(ctx, query, args, start, err, false)
	return err
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*StatsTx)(nil)
)
