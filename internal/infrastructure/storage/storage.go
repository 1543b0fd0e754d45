package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/eshaffer321/resale-ledger/internal/infrastructure/config"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// dialect captures the few places SQLite and MySQL differ.
type dialect struct {
	driver      string
	goose       goose.Dialect
	lockSuffix  string // appended to the session read inside a write transaction
	txIsolation sql.IsolationLevel
}

var (
	dialectSQLite = dialect{driver: "sqlite3", goose: goose.DialectSQLite3}
	dialectMySQL  = dialect{
		driver:      "mysql",
		goose:       goose.DialectMySQL,
		lockSuffix:  " FOR UPDATE",
		txIsolation: sql.LevelSerializable,
	}
)

// Storage provides SQL database access for sessions, store purchases and items.
// It implements the Repository interface.
type Storage struct {
	db      *sql.DB
	dialect dialect
	logger  *slog.Logger
	now     func() time.Time
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage opens (or creates) a SQLite database at dbPath and migrates it.
func NewStorage(dbPath string) (*Storage, error) {
	return Open(config.StorageConfig{Driver: "sqlite3", DatabasePath: dbPath}, nil)
}

// Open connects to the configured database and runs all pending migrations.
func Open(cfg config.StorageConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		d   dialect
		dsn string
	)
	switch cfg.Driver {
	case "", "sqlite3", "sqlite":
		d = dialectSQLite
		dsn = sqliteDSN(cfg.DatabasePath)
	case "mysql":
		d = dialectMySQL
		var err error
		if dsn, err = mysqlDSN(cfg.DSN); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", d.driver, err)
	}

	s := newWithDB(db, d, logger)

	if err := s.runMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func newWithDB(db *sql.DB, d dialect, logger *slog.Logger) *Storage {
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{
		db:      db,
		dialect: d,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// sqliteDSN enables foreign keys, waits on a busy database instead of failing,
// and makes every transaction take the write lock up front so that a
// recalculation reads and writes one consistent snapshot.
func sqliteDSN(path string) string {
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
}

// mysqlDSN forces parseTime so DATETIME columns scan into time.Time, and
// clientFoundRows so an UPDATE that changes nothing still reports its match.
func mysqlDSN(dsn string) (string, error) {
	if dsn == "" {
		return "", fmt.Errorf("mysql storage requires a dsn")
	}
	c, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	c.ParseTime = true
	c.ClientFoundRows = true
	c.Loc = time.UTC
	return c.FormatDSN(), nil
}

func (s *Storage) migrationProvider() (*goose.Provider, error) {
	fsys, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(s.dialect.goose, s.db, fsys)
}

// runMigrations applies every pending migration.
func (s *Storage) runMigrations(ctx context.Context) error {
	provider, err := s.migrationProvider()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	for _, r := range results {
		s.logger.Info("applied migration",
			"version", r.Source.Version,
			"file", r.Source.Path,
			"duration", r.Duration)
	}
	return nil
}

// SchemaVersion returns the latest applied migration version.
func (s *Storage) SchemaVersion(ctx context.Context) (int64, error) {
	provider, err := s.migrationProvider()
	if err != nil {
		return 0, err
	}
	return provider.GetDBVersion(ctx)
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, committing on success.
func (s *Storage) withTx(ctx context.Context, readOnly bool, fn func(tx *sql.Tx) error) error {
	var opts *sql.TxOptions
	if s.dialect.txIsolation != sql.LevelDefault {
		opts = &sql.TxOptions{Isolation: s.dialect.txIsolation, ReadOnly: readOnly}
	}

	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// nullInt converts an optional amount into a query argument.
func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// intPtr converts a scanned nullable column back into an optional amount.
func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

// expectOne maps a zero-row write to ErrNotFound.
func expectOne(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return nil
}
