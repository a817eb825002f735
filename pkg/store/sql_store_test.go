package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
)

func TestSQLStore_PostgresPut(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s, err := NewSQLStore(db, DialectPostgres, "")
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO contacts (id, "firstName", "lastName") VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`)).
		WithArgs("c-1", "john", "doe").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = s.Put(context.Background(), contact.Record{ID: "c-1", FirstName: "john", LastName: "doe"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_PostgresErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"bad password", &pq.Error{Code: "28P01"}, KindUnauthorized},
		{"statement timeout", &pq.Error{Code: "57014"}, KindTimeout},
		{"admin shutdown", &pq.Error{Code: "57P01"}, KindUnavailable},
		{"connection failure", &pq.Error{Code: "08006"}, KindUnavailable},
		{"too many connections", &pq.Error{Code: "53300"}, KindUnavailable},
		{"unique violation", &pq.Error{Code: "23505"}, KindUnknown},
		{"conn done", sql.ErrConnDone, KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			s, err := NewSQLStore(db, DialectPostgres, "people")
			require.NoError(t, err)

			mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO people`)).
				WithArgs("c-1", "a", "b").
				WillReturnError(tt.err)

			err = s.Put(context.Background(), contact.Record{ID: "c-1", FirstName: "a", LastName: "b"})

			var se *Error
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.want, se.Kind)
			assert.Equal(t, TypePostgres, se.Backend)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestNewSQLStore_RejectsBadInput(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSQLStore(db, DialectPostgres, "contacts; DROP TABLE x")
	assert.Error(t, err)

	_, err = NewSQLStore(db, Dialect("mysql"), "")
	assert.Error(t, err)
}

func TestSQLStore_SQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "contacts.db")

	s, err := NewSQLStoreFromConfig(ctx, DialectSQLite, SQLConfig{DSN: dsn})
	require.NoError(t, err)
	defer s.Close()

	rec := contact.Record{ID: "c-1", FirstName: "  john ", LastName: "doe"}
	require.NoError(t, s.Put(ctx, rec))

	var got contact.Record
	row := s.db.QueryRowContext(ctx, `SELECT id, "firstName", "lastName" FROM contacts WHERE id = ?`, "c-1")
	require.NoError(t, row.Scan(&got.ID, &got.FirstName, &got.LastName))
	assert.Equal(t, rec, got)

	// A repeated put under the same id keeps the first row.
	require.NoError(t, s.Put(ctx, contact.Record{ID: "c-1", FirstName: "jane", LastName: "roe"}))
	row = s.db.QueryRowContext(ctx, `SELECT id, "firstName", "lastName" FROM contacts WHERE id = ?`, "c-1")
	require.NoError(t, row.Scan(&got.ID, &got.FirstName, &got.LastName))
	assert.Equal(t, rec, got)

	var n int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestSQLStore_RetryAfterTimeoutSucceeds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	inner, err := NewSQLStore(db, DialectPostgres, "")
	require.NoError(t, err)
	s := WithRetry(inner, fastRetry(3), quietLogger())

	insert := regexp.QuoteMeta(`INSERT INTO contacts (id, "firstName", "lastName") VALUES ($1, $2, $3) ON CONFLICT (id) DO NOTHING`)
	// The first attempt times out after the row was written; the retry
	// conflicts with it and affects no rows.
	mock.ExpectExec(insert).
		WithArgs("c-1", "john", "doe").
		WillReturnError(&pq.Error{Code: "57014"})
	mock.ExpectExec(insert).
		WithArgs("c-1", "john", "doe").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = s.Put(context.Background(), contact.Record{ID: "c-1", FirstName: "john", LastName: "doe"})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_SchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "contacts.db")

	s, err := NewSQLStoreFromConfig(ctx, DialectSQLite, SQLConfig{DSN: dsn})
	require.NoError(t, err)
	assert.NoError(t, s.EnsureSchema(ctx))
	assert.NoError(t, s.Close())
}

func TestNewSQLStoreFromConfig_RequiresDSN(t *testing.T) {
	_, err := NewSQLStoreFromConfig(context.Background(), DialectPostgres, SQLConfig{})
	assert.Error(t, err)
}
