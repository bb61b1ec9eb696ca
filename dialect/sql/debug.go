package sql

import (
	"context"

	"go.uber.org/zap"

	"github.com/syssam/veloxext/dialect"
)

// DebugDriver wraps a Driver and logs every statement at debug level.
type DebugDriver struct {
	*Driver
	log *zap.Logger
}

// NewDebugDriver wraps a Driver with debug logging.
//
//	drv, _ := sql.Open(dialect.Postgres, "postgres", dsn)
//	debugDriver := sql.NewDebugDriver(drv, logger.Named("sql"))
func NewDebugDriver(drv *Driver, log *zap.Logger) *DebugDriver {
	if log == nil {
		log = zap.NewNop()
	}
	return &DebugDriver{Driver: drv, log: log}
}

// Query executes a query and logs it.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	d.log.Debug("query", zap.String("sql", query), zap.Any("args", args))
	return d.Driver.Query(ctx, query, args, v)
}

// Exec executes a statement and logs it.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	d.log.Debug("exec", zap.String("sql", query), zap.Any("args", args))
	return d.Driver.Exec(ctx, query, args, v)
}

// Tx starts a transaction with debug logging.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	d.log.Debug("begin transaction")
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &DebugTx{Tx: tx, log: d.log}, nil
}

// DebugTx wraps a transaction with debug logging.
type DebugTx struct {
	dialect.Tx
	log *zap.Logger
}

// Query executes a query within the transaction and logs it.
func (tx *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	tx.log.Debug("tx query", zap.String("sql", query), zap.Any("args", args))
	return tx.Tx.Query(ctx, query, args, v)
}

// Exec executes a statement within the transaction and logs it.
func (tx *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	tx.log.Debug("tx exec", zap.String("sql", query), zap.Any("args", args))
	return tx.Tx.Exec(ctx, query, args, v)
}

// Commit commits the transaction and logs it.
func (tx *DebugTx) Commit() error {
	tx.log.Debug("commit transaction")
	return tx.Tx.Commit()
}

// Rollback rolls back the transaction and logs it.
func (tx *DebugTx) Rollback() error {
	tx.log.Debug("rollback transaction")
	return tx.Tx.Rollback()
}

var (
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*DebugTx)(nil)
)
