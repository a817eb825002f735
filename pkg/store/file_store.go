package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
)

// FileStore writes each record as <dir>/<id>.json. It exists for local
// development without cloud credentials.
type FileStore struct {
	baseDir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	//nolint:gosec // G301: 0755 is intentional for a local data directory
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to ensure contacts dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Put writes to a temp file and renames it into place.
func (s *FileStore) Put(ctx context.Context, rec contact.Record) error {
	if err := ctx.Err(); err != nil {
		return Classify(TypeFS, err)
	}
	if rec.ID == "" || filepath.Base(rec.ID) != rec.ID {
		return &Error{Kind: KindUnknown, Backend: TypeFS, Err: fmt.Errorf("invalid record id %q", rec.ID)}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return &Error{Kind: KindUnknown, Backend: TypeFS, Err: fmt.Errorf("marshal record: %w", err)}
	}

	path := filepath.Join(s.baseDir, rec.ID+".json")
	tmpPath := path + ".tmp"
	//nolint:gosec // G306: 0644 is intentional for readable record files
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return Classify(TypeFS, fmt.Errorf("failed to write record: %w", err), classifyFS)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return Classify(TypeFS, fmt.Errorf("failed to commit record: %w", err), classifyFS)
	}
	return nil
}

func classifyFS(err error) (ErrorKind, bool) {
	if os.IsPermission(err) {
		return KindUnauthorized, true
	}
	return KindUnknown, false
}
