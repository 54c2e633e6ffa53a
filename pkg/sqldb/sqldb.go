package sqldb

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	MySQL    Dialect = "mysql"
	SQLite   Dialect = "sqlite3"
)

func (d Dialect) Valid() bool {
	switch d {
	case Postgres, MySQL, SQLite:
		return true
	}
	return false
}

func (d Dialect) Placeholder() sq.PlaceholderFormat {
	if d == Postgres {
		return sq.Dollar
	}
	return sq.Question
}

// Returning reports whether INSERT ... RETURNING id is used instead of LastInsertId.
func (d Dialect) Returning() bool { return d == Postgres }

// RowLock reports whether SELECT ... FOR UPDATE is available.
// sqlite transactions are opened with _txlock=immediate instead.
func (d Dialect) RowLock() bool { return d != SQLite }

func (d Dialect) driverName() string {
	if d == Postgres {
		return "pgx"
	}
	return string(d)
}

type DB struct {
	Driver   Dialect `yaml:"driver" envconfig:"DB_DRIVER" default:"postgres"`
	Host     string  `yaml:"host" envconfig:"DB_HOST" default:"localhost"`
	Port     int     `yaml:"port" envconfig:"DB_PORT" default:"5432"`
	Username string  `yaml:"user" envconfig:"DB_USER"`
	Password string  `yaml:"password" envconfig:"DB_PASSWORD" json:"-"`
	NameDB   string  `yaml:"dbname" envconfig:"DB_NAME" default:"bookbuster"`
	SSLMode  string  `yaml:"sslmode" envconfig:"DB_SSLMODE" default:"disable"`
	// Path is the database file for the sqlite3 driver.
	Path string `yaml:"path" envconfig:"DB_PATH" default:"bookbuster.db"`

	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`
}

func (cfg *DB) DSN() (string, error) {
	switch cfg.Driver {
	case Postgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Path:     cfg.NameDB,
			RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
		}
		return u.String(), nil
	case MySQL:
		c := mysql.NewConfig()
		c.User = cfg.Username
		c.Passwd = cfg.Password
		c.Net = "tcp"
		c.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		c.DBName = cfg.NameDB
		c.ParseTime = true
		c.Loc = time.UTC
		// rows affected counts matched rows, as on the other dialects
		c.ClientFoundRows = true
		return c.FormatDSN(), nil
	case SQLite:
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=1&_txlock=immediate", cfg.Path), nil
	}
	return "", errors.Errorf("unsupported db driver %q", cfg.Driver)
}

// NewDB opens the configured database and applies the migrations found
// under the dialect-named directory of migrations.
func NewDB(ctx context.Context, cfg *DB, migrations fs.FS) (*sqlx.DB, error) {
	db, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := Migrate(db, cfg.Driver, migrations); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func Open(ctx context.Context, cfg *DB) (*sqlx.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(cfg.Driver.driverName(), dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqlx.Open")
	}

	if cfg.Driver == SQLite {
		// one writer; immediate transactions queue on the busy timeout
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "db.PingContext")
	}
	return db, nil
}

func Migrate(db *sqlx.DB, dialect Dialect, migrations fs.FS) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(string(dialect)); err != nil {
		return errors.Wrap(err, "goose.SetDialect")
	}
	if err := goose.Up(db.DB, string(dialect)); err != nil {
		return errors.Wrap(err, "goose.Up")
	}
	return nil
}
