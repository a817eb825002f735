// Package store persists contact records to a durable key-value backend.
//
// Every backend performs exactly one write per Put, keyed by the record id,
// with the attributes id, firstName and lastName. Errors leaving a backend
// are always *Error values whose Kind tells the caller what went wrong
// without exposing backend detail. Bounded retries are layered on top by
// WithRetry so the policy stays in one place.
package store

import (
	"context"
	"io"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
)

// Store is the put-by-key contract consumed by the handler.
type Store interface {
	// Put writes rec under rec.ID. It is attempted once per call and the
	// write is authoritative once the backend acknowledges it.
	Put(ctx context.Context, rec contact.Record) error
}

// Type names a storage backend.
type Type string

const (
	TypeDynamoDB Type = "dynamodb"
	TypeS3       Type = "s3"
	TypeGCS      Type = "gcs"
	TypeRedis    Type = "redis"
	TypePostgres Type = "postgres"
	TypeSQLite   Type = "sqlite"
	TypeFS       Type = "fs"
	TypeMemory   Type = "memory"
)

// Close releases backend resources when the store holds any.
func Close(s Store) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
