package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusError struct{ code int }

func (e statusError) Error() string       { return fmt.Sprintf("status %d", e.code) }
func (e statusError) HTTPStatusCode() int { return e.code }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"deadline", fmt.Errorf("put: %w", context.DeadlineExceeded), KindTimeout},
		{"net timeout", &net.OpError{Op: "read", Net: "tcp", Err: timeoutErr{}}, KindTimeout},
		{"conn refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), KindUnavailable},
		{"op error", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("no route to host")}, KindUnavailable},
		{"dns", &net.DNSError{Err: "no such host", Name: "dynamodb.local"}, KindUnavailable},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDeniedException"}, KindUnauthorized},
		{"unrecognized client", &smithy.GenericAPIError{Code: "UnrecognizedClientException"}, KindUnauthorized},
		{"throughput", &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException"}, KindUnavailable},
		{"throttling", &smithy.GenericAPIError{Code: "ThrottlingException"}, KindUnavailable},
		{"s3 timeout", &smithy.GenericAPIError{Code: "RequestTimeout"}, KindTimeout},
		{"missing table", &smithy.GenericAPIError{Code: "ResourceNotFoundException"}, KindUnknown},
		{"http 403", statusError{403}, KindUnauthorized},
		{"http 503", statusError{503}, KindUnavailable},
		{"http 429", statusError{429}, KindUnavailable},
		{"http 504", statusError{504}, KindTimeout},
		{"http 400", statusError{400}, KindUnknown},
		{"plain", errors.New("boom"), KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify(TypeDynamoDB, tt.err)
			var se *Error
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.want, se.Kind, "classified as %s", se.Kind)
			assert.Equal(t, TypeDynamoDB, se.Backend)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	assert.NoError(t, Classify(TypeS3, nil))
}

func TestClassify_KeepsExistingClassification(t *testing.T) {
	orig := &Error{Kind: KindUnauthorized, Backend: TypeRedis, Err: errors.New("denied")}
	err := Classify(TypeDynamoDB, fmt.Errorf("wrapped: %w", orig))
	assert.Same(t, orig, err)
}

func TestClassify_ExtraClassifierRunsFirst(t *testing.T) {
	err := Classify(TypeRedis, fmt.Errorf("get conn: %w", redis.ErrPoolTimeout), classifyRedis)
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindTimeout, se.Kind)
}

func TestError_Retryable(t *testing.T) {
	assert.True(t, (&Error{Kind: KindUnavailable}).Retryable())
	assert.True(t, (&Error{Kind: KindTimeout}).Retryable())
	assert.False(t, (&Error{Kind: KindUnauthorized}).Retryable())
	assert.False(t, (&Error{Kind: KindUnknown}).Retryable())
}

func TestError_Message(t *testing.T) {
	err := &Error{Kind: KindTimeout, Backend: TypeDynamoDB, Err: errors.New("deadline")}
	assert.Equal(t, "dynamodb store: timeout: deadline", err.Error())
}
