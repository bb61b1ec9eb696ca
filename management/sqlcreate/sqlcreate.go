// Package sqlcreate generates the SQL that creates the database (and user)
// described by a database alias of the settings file. It never connects to
// a database; statements go to stdout and advisory notes to stderr, so the
// output can be piped into a client:
//
//	manage sqlcreate --database=default | psql -U postgres -W
//	manage sqlcreate --database=default | mysql -u root -p
package sqlcreate

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/syssam/veloxext/dialect"
	"github.com/syssam/veloxext/dialect/sql"
	"github.com/syssam/veloxext/settings"
)

// Options are the command line options of the command.
type Options struct {
	// Database nominates the alias; empty means settings.DefaultDBAlias.
	Database string
	// Router is the deprecated spelling of Database. When set and different
	// from the default alias it overrides Database.
	Router string
	// Drop adds DROP statements before the CREATE ones (PostgreSQL only).
	Drop bool
}

// Registry resolves database aliases.
type Registry interface {
	Database(alias string) (settings.Database, error)
}

// Command generates provisioning SQL.
type Command struct {
	Settings   Registry
	Classifier *dialect.Classifier
	Stdout     io.Writer
	Stderr     io.Writer
	Logger     *zap.Logger
	// Hostname returns the client host used in MySQL grants. Defaults to os.Hostname.
	Hostname func() (string, error)
}

// Script is the generated output: statements for stdout, notes for stderr.
type Script struct {
	Notes      []string
	Statements []string
}

// Run resolves the alias and writes the script. An unknown alias returns a
// *veloxext.ConfigError before anything is written.
func (c *Command) Run(ctx context.Context, opts Options) error {
	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}
	alias := opts.Database
	if alias == "" {
		alias = settings.DefaultDBAlias
	}
	if opts.Router != "" && opts.Router != settings.DefaultDBAlias {
		log.Warn("--router is deprecated. You should use --database.")
		alias = opts.Router
	}
	db, err := c.Settings.Database(alias)
	if err != nil {
		return err
	}
	class := c.Classifier.Classify(db.Engine)
	log.Debug("generating create script",
		zap.String("database", alias),
		zap.String("engine", db.Engine),
		zap.Stringer("class", class),
		zap.String("host", db.HostOrDefault()),
	)
	var client string
	if class == dialect.ClassMySQL {
		hostname := c.Hostname
		if hostname == nil {
			hostname = os.Hostname
		}
		if client, err = hostname(); err != nil {
			return fmt.Errorf("sqlcreate: resolve hostname: %w", err)
		}
	}
	script := Generate(class, db, opts.Drop, client)
	return script.Write(c.stdout(), c.stderr())
}

func (c *Command) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

func (c *Command) stderr() io.Writer {
	if c.Stderr == nil {
		return os.Stderr
	}
	return c.Stderr
}

// Write writes the notes to stderr and the statements to stdout, one per line.
func (s Script) Write(stdout, stderr io.Writer) error {
	for _, n := range s.Notes {
		if _, err := fmt.Fprintln(stderr, n); err != nil {
			return err
		}
	}
	for _, st := range s.Statements {
		if _, err := fmt.Fprintln(stdout, st); err != nil {
			return err
		}
	}
	return nil
}

// Advisory notes.
const (
	sqliteNote = "-- migrate will automatically create a sqlite3 database file."
	mysqlNote  = "-- WARNING!: https://docs.djangoproject.com/en/dev/ref/databases/#collation-settings\n" +
		"-- Please read this carefully! Collation will be set to utf8_bin to have case-sensitive data."
	postgresTrustNote = "-- Assuming that unix domain socket connection mode is being used because\n" +
		"-- USER or PASSWORD are blank in the DATABASES configuration."
)

// Generate returns the script for a database of the given class. client is
// the host the MySQL grant is scoped to.
func Generate(class dialect.Class, db settings.Database, drop bool, client string) Script {
	var s Script
	switch class {
	case dialect.ClassSQLite:
		s.Notes = append(s.Notes, sqliteNote)
	case dialect.ClassMySQL:
		s.Notes = append(s.Notes, mysqlNote)
		s.Statements = append(s.Statements,
			fmt.Sprintf("CREATE DATABASE %s CHARACTER SET utf8 COLLATE utf8_bin;", db.Name),
			fmt.Sprintf("GRANT ALL PRIVILEGES ON %s.* to '%s'@'%s' identified by '%s';",
				db.Name, sql.EscapeString(db.User), sql.EscapeString(client), sql.EscapeString(db.Password)),
		)
	case dialect.ClassPostgres:
		if drop {
			s.Statements = append(s.Statements, fmt.Sprintf("DROP DATABASE IF EXISTS %s;", db.Name))
			if db.User != "" {
				s.Statements = append(s.Statements, fmt.Sprintf("DROP USER IF EXISTS %s;", db.User))
			}
		}
		if db.User != "" && db.Password != "" {
			s.Statements = append(s.Statements,
				fmt.Sprintf("CREATE USER %s WITH ENCRYPTED PASSWORD %s CREATEDB;", db.User, pq.QuoteLiteral(db.Password)),
				fmt.Sprintf("CREATE DATABASE %s WITH ENCODING 'UTF-8' OWNER %s;", db.Name, pq.QuoteIdentifier(db.User)),
				fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %s TO %s;", db.Name, db.User),
			)
		} else {
			s.Notes = append(s.Notes, postgresTrustNote)
			s.Statements = append(s.Statements, fmt.Sprintf("CREATE DATABASE %s WITH ENCODING 'UTF-8';", db.Name))
		}
	default:
		// CREATE DATABASE is not SQL standard, but most engines accept it.
		s.Notes = append(s.Notes, fmt.Sprintf("-- Don't know how to handle '%s' falling back to SQL.", db.Engine))
		s.Statements = append(s.Statements,
			fmt.Sprintf("CREATE DATABASE %s;", db.Name),
			fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %s to %s;", db.Name, db.User),
		)
	}
	return s
}
