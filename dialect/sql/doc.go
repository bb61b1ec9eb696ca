// Package sql wraps database/sql with the dialect.Driver interface and
// provides the small set of dialect-aware helpers the contrib stores need.
//
// # Opening a driver
//
//	drv, err := sql.Open(dialect.SQLite, "sqlite", "file:shop.db")
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
// Tests wrap a go-sqlmock connection with OpenDB:
//
//	db, mock, _ := sqlmock.New()
//	drv := sql.OpenDB(dialect.Postgres, db)
//
// # Helpers
//
//   - Quote: identifier quoting ("name" for Postgres/SQLite, `name` for MySQL)
//   - Placeholder: bind markers ($1 for Postgres, ? otherwise)
//   - EscapeString: single-quoted literal escaping
//   - EscapeLike: LIKE wildcard escaping with '!' as the escape character
//   - ScanMaps: reads rows into column-name keyed maps
//
// # Debugging
//
// DebugDriver logs every statement through a zap logger:
//
//	drv = sql.NewDebugDriver(drv, logger.Named("sql"))
//
// StatsDriver counts statements and reports the ones slower than a threshold:
//
//	stats := sql.NewStatsDriver(drv, sql.WithSlowQueryLog(logger.Named("sql")))
package sql
