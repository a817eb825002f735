package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
)

// DefaultSQLTable is the table used by the SQL backends when none is configured.
const DefaultSQLTable = "contacts"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Dialect selects placeholder syntax and error classification.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// SQLConfig holds configuration for SQLStore.
type SQLConfig struct {
	DSN   string
	Table string
}

// SQLStore inserts each record as one row. Columns mirror the item
// attributes of the key-value backends.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	table   string
	insert  string
	ownsDB  bool
}

// NewSQLStore wraps an open database.
func NewSQLStore(db *sql.DB, dialect Dialect, table string) (*SQLStore, error) {
	if table == "" {
		table = DefaultSQLTable
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	var placeholders string
	switch dialect {
	case DialectPostgres:
		placeholders = "$1, $2, $3"
	case DialectSQLite:
		placeholders = "?, ?, ?"
	default:
		return nil, fmt.Errorf("unsupported SQL dialect: %s", dialect)
	}

	return &SQLStore{
		db:      db,
		dialect: dialect,
		table:   table,
		insert:  fmt.Sprintf(`INSERT INTO %s (id, "firstName", "lastName") VALUES (%s) ON CONFLICT (id) DO NOTHING`, table, placeholders),
	}, nil
}

// NewSQLStoreFromConfig opens the database with the driver matching dialect
// and makes sure the table exists.
func NewSQLStoreFromConfig(ctx context.Context, dialect Dialect, cfg SQLConfig) (*SQLStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required for %s storage", dialect)
	}

	db, err := sql.Open(string(dialect), cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}

	s, err := NewSQLStore(db, dialect, cfg.Table)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	s.ownsDB = true

	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the contacts table if it does not exist.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		"firstName" TEXT NOT NULL,
		"lastName" TEXT NOT NULL
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create %s table: %w", s.table, err)
	}
	return nil
}

// Put inserts the record. A row that already exists under rec.ID is left as
// is, so a retried insert whose first attempt landed still succeeds.
func (s *SQLStore) Put(ctx context.Context, rec contact.Record) error {
	_, err := s.db.ExecContext(ctx, s.insert, rec.ID, rec.FirstName, rec.LastName)
	if err != nil {
		return Classify(s.backend(), fmt.Errorf("failed to persist contact: %w", err), classifySQL)
	}
	return nil
}

// Close closes the database when the store opened it.
func (s *SQLStore) Close() error {
	if !s.ownsDB {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) backend() Type {
	if s.dialect == DialectSQLite {
		return TypeSQLite
	}
	return TypePostgres
}

// SQLite primary result codes.
const (
	sqlitePerm   = 3
	sqliteBusy   = 5
	sqliteLocked = 6
	sqliteAuth   = 23
)

func classifySQL(err error) (ErrorKind, bool) {
	if errors.Is(err, sql.ErrConnDone) {
		return KindUnavailable, true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code.Class() == "28":
			return KindUnauthorized, true
		case pqErr.Code == "57014":
			return KindTimeout, true
		case pqErr.Code.Class() == "08", pqErr.Code.Class() == "53", strings.HasPrefix(string(pqErr.Code), "57P"):
			return KindUnavailable, true
		}
		return KindUnknown, true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() & 0xff {
		case sqliteBusy, sqliteLocked:
			return KindUnavailable, true
		case sqlitePerm, sqliteAuth:
			return KindUnauthorized, true
		}
		return KindUnknown, true
	}

	return KindUnknown, false
}
