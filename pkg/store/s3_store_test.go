package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
)

type capturedObject struct {
	bucket, key, contentType string
	body                     []byte
}

type fakeS3 struct {
	objects []capturedObject
	err     error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects = append(f.objects, capturedObject{
		bucket:      aws.ToString(params.Bucket),
		key:         aws.ToString(params.Key),
		contentType: aws.ToString(params.ContentType),
		body:        body,
	})
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Put(t *testing.T) {
	client := &fakeS3{}
	s := NewS3Store(client, "contacts-bucket", "contacts/")

	rec := contact.Record{ID: "abc-123", FirstName: "john", LastName: "doe"}
	require.NoError(t, s.Put(context.Background(), rec))
	require.Len(t, client.objects, 1)

	obj := client.objects[0]
	assert.Equal(t, "contacts-bucket", obj.bucket)
	assert.Equal(t, "contacts/abc-123.json", obj.key)
	assert.Equal(t, "application/json", obj.contentType)

	var got contact.Record
	require.NoError(t, json.Unmarshal(obj.body, &got))
	assert.Equal(t, rec, got)
}

func TestS3Store_NoPrefix(t *testing.T) {
	client := &fakeS3{}
	s := NewS3Store(client, "b", "")

	require.NoError(t, s.Put(context.Background(), contact.Record{ID: "id-1", FirstName: "a", LastName: "b"}))
	assert.Equal(t, "id-1.json", client.objects[0].key)
}

func TestS3Store_ErrorIsClassified(t *testing.T) {
	client := &fakeS3{err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}}
	s := NewS3Store(client, "b", "")

	err := s.Put(context.Background(), contact.Record{ID: "id-1", FirstName: "a", LastName: "b"})

	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindUnauthorized, se.Kind)
	assert.Equal(t, TypeS3, se.Backend)
}
