// Package dialect classifies database engines and defines the driver
// interfaces used by the velox contrib extensions.
//
// # Supported Dialects
//
// The following dialects are recognised:
//
//   - Postgres: PostgreSQL database
//   - MySQL: MySQL/MariaDB database
//   - SQLite: SQLite database
//
// Every other engine string classifies as Other. Callers are expected to
// handle Other with a best-effort fallback rather than an error.
//
// # Classification
//
// Engine strings come from settings files and may be either a Go driver
// name or a Django backend path:
//
//	dialect.Classify("postgres")                    // dialect.ClassPostgres
//	dialect.Classify("django.db.backends.mysql")    // dialect.ClassMySQL
//	dialect.Classify("django.db.backends.oracle")   // dialect.ClassOther
//
// Additional engine names can be registered on a Classifier:
//
//	c := dialect.NewClassifier(dialect.WithEngines(dialect.ClassPostgres, "myproject.backends.pg"))
//	c.Classify("myproject.backends.pg") // dialect.ClassPostgres
//
// # Driver Interface
//
// The package defines the Driver interface implemented by dialect/sql:
//
//	type Driver interface {
//	    ExecQuerier
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
package dialect
