//go:build gcp

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
)

// GCSStore writes each record as a JSON object at <prefix><id>.json.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSStore creates a new GCS-backed store using application default
// credentials.
func NewGCSStore(ctx context.Context, cfg GCSConfig) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

// Put uploads the record document.
func (s *GCSStore) Put(ctx context.Context, rec contact.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &Error{Kind: KindUnknown, Backend: TypeGCS, Err: fmt.Errorf("marshal record: %w", err)}
	}

	w := s.client.Bucket(s.bucket).Object(s.prefix + rec.ID + ".json").NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return Classify(TypeGCS, fmt.Errorf("gcs write failed: %w", err), classifyGoogleAPI)
	}
	if err := w.Close(); err != nil {
		return Classify(TypeGCS, fmt.Errorf("gcs close failed: %w", err), classifyGoogleAPI)
	}
	return nil
}

// Close closes the GCS client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func classifyGoogleAPI(err error) (ErrorKind, bool) {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) {
		return KindUnknown, false
	}
	return kindForStatus(gErr.Code)
}

func newGCSStore(ctx context.Context, cfg GCSConfig) (Store, error) {
	return NewGCSStore(ctx, cfg)
}
