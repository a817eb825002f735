package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
)

// S3Putter is the slice of the S3 API the store needs.
type S3Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store writes each record as a JSON object at <prefix><id>.json.
type S3Store struct {
	client S3Putter
	bucket string
	prefix string // Optional key prefix (e.g., "contacts/")
}

// S3Config holds configuration for S3Store.
type S3Config struct {
	AWS    AWSConfig
	Bucket string
	Prefix string
}

// NewS3Store wraps an existing client.
func NewS3Store(client S3Putter, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// NewS3StoreFromConfig creates an S3 client with an optional custom endpoint.
func NewS3StoreFromConfig(ctx context.Context, cfg S3Config) (*S3Store, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
			o.UsePathStyle = true // Required for MinIO/LocalStack
		}
	})
	return NewS3Store(client, cfg.Bucket, cfg.Prefix), nil
}

func (s *S3Store) key(id string) string {
	return s.prefix + id + ".json"
}

// Put uploads the record document.
func (s *S3Store) Put(ctx context.Context, rec contact.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return &Error{Kind: KindUnknown, Backend: TypeS3, Err: fmt.Errorf("marshal record: %w", err)}
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(rec.ID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return Classify(TypeS3, fmt.Errorf("s3 put failed: %w", err))
	}
	return nil
}
