package dialect

import (
	"context"
	"fmt"
	"strings"
)

// Dialect names for the supported databases.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// ExecQuerier wraps the 2 database operations.
type ExecQuerier interface {
	// Exec executes a query that does not return records. For example, in SQL, INSERT or UPDATE.
	// It scans the result into the pointer v. For SQL drivers, it is dialect/sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows, typically a SELECT in SQL.
	// It scans the result into the pointer v. For SQL drivers, it is *dialect/sql.Rows.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for the contrib stores.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}

// Class is the closed set of engine families that get dedicated handling.
type Class int

// Engine classes.
const (
	ClassOther Class = iota
	ClassSQLite
	ClassMySQL
	ClassPostgres
)

// String returns the lower-case class name.
func (c Class) String() string {
	switch c {
	case ClassSQLite:
		return "sqlite"
	case ClassMySQL:
		return "mysql"
	case ClassPostgres:
		return "postgresql"
	default:
		return "other"
	}
}

// Dialect returns the dialect name for the class, or "" for ClassOther.
func (c Class) Dialect() string {
	switch c {
	case ClassSQLite:
		return SQLite
	case ClassMySQL:
		return MySQL
	case ClassPostgres:
		return Postgres
	default:
		return ""
	}
}

// ParseClass parses a class name as used in settings files.
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sqlite", "sqlite3":
		return ClassSQLite, nil
	case "mysql":
		return ClassMySQL, nil
	case "postgres", "postgresql":
		return ClassPostgres, nil
	case "other":
		return ClassOther, nil
	default:
		return ClassOther, fmt.Errorf("dialect: unknown engine class %q", s)
	}
}

// Built-in engine names per class. Both Go driver names and Django
// backend paths are accepted, as settings files carry either.
var (
	SQLiteEngines = []string{
		"sqlite",
		"sqlite3",
		"django.db.backends.sqlite3",
		"django.db.backends.spatialite",
		"django.contrib.gis.db.backends.spatialite",
	}
	MySQLEngines = []string{
		"mysql",
		"django.db.backends.mysql",
		"django.contrib.gis.db.backends.mysql",
		"mysql.connector.django",
	}
	PostgresEngines = []string{
		"postgres",
		"postgresql",
		"pgx",
		"django.db.backends.postgresql",
		"django.db.backends.postgresql_psycopg2",
		"django.db.backends.postgis",
		"django.contrib.gis.db.backends.postgis",
		"psqlextra.backend",
		"django_zero_downtime_migrations.backends.postgres",
		"django_zero_downtime_migrations.backends.postgis",
	}
)

// Classifier maps engine strings to classes.
type Classifier struct {
	engines map[string]Class
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithEngines registers additional engine names for a class.
func WithEngines(c Class, engines ...string) ClassifierOption {
	return func(cl *Classifier) {
		for _, e := range engines {
			cl.engines[e] = c
		}
	}
}

// NewClassifier returns a Classifier seeded with the built-in engine names.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	cl := &Classifier{engines: make(map[string]Class)}
	for c, names := range map[Class][]string{
		ClassSQLite:   SQLiteEngines,
		ClassMySQL:    MySQLEngines,
		ClassPostgres: PostgresEngines,
	} {
		for _, n := range names {
			cl.engines[n] = c
		}
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

// Classify returns the class of the engine. Membership is exact; anything
// not registered is ClassOther.
func (cl *Classifier) Classify(engine string) Class {
	if cl == nil {
		return defaultClassifier.Classify(engine)
	}
	return cl.engines[engine]
}

var defaultClassifier = NewClassifier()

// Classify classifies the engine against the built-in engine names.
func Classify(engine string) Class {
	return defaultClassifier.Classify(engine)
}
