package sqlstore

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/syssam/veloxext/dialect"
	"github.com/syssam/veloxext/dialect/sql"
	"github.com/syssam/veloxext/settings"
)

// ErrUnsupportedEngine is returned for databases the stores cannot open.
var ErrUnsupportedEngine = errors.New("sqlstore: unsupported engine")

// DataSource returns the dialect, database/sql driver name and DSN of a
// configured database.
func DataSource(c *dialect.Classifier, db settings.Database) (dialectName, driverName, dsn string, err error) {
	switch c.Classify(db.Engine) {
	case dialect.ClassSQLite:
		return dialect.SQLite, "sqlite", db.Name, nil
	case dialect.ClassMySQL:
		cfg := mysql.NewConfig()
		cfg.User = db.User
		cfg.Passwd = db.Password
		cfg.Net = "tcp"
		cfg.Addr = hostPort(db, 3306)
		cfg.DBName = db.Name
		cfg.ParseTime = true
		return dialect.MySQL, "mysql", cfg.FormatDSN(), nil
	case dialect.ClassPostgres:
		u := &url.URL{
			Scheme:   "postgres",
			Host:     hostPort(db, 5432),
			Path:     "/" + db.Name,
			RawQuery: "sslmode=disable",
		}
		if db.User != "" {
			u.User = url.UserPassword(db.User, db.Password)
			if db.Password == "" {
				u.User = url.User(db.User)
			}
		}
		return dialect.Postgres, "postgres", u.String(), nil
	default:
		return "", "", "", fmt.Errorf("%w: %q", ErrUnsupportedEngine, db.Engine)
	}
}

func hostPort(db settings.Database, port int) string {
	if db.Port != 0 {
		port = db.Port
	}
	return net.JoinHostPort(db.HostOrDefault(), strconv.Itoa(port))
}

// Open opens a driver for a configured database, applying its pool
// settings.
func Open(c *dialect.Classifier, db settings.Database) (*sql.Driver, error) {
	d, driverName, dsn, err := DataSource(c, db)
	if err != nil {
		return nil, err
	}
	drv, err := sql.Open(d, driverName, dsn,
		sql.WithConnMaxLifetime(db.ConnMaxAge),
		sql.WithMaxOpenConns(db.MaxOpenConns),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", db.Name, err)
	}
	return drv, nil
}
