package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/aws/smithy-go"
)

// ErrorKind classifies a failed write.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindUnavailable covers throttling, server-side faults and network
	// failures. These are safe to retry.
	KindUnavailable
	// KindUnauthorized covers rejected or missing credentials.
	KindUnauthorized
	// KindTimeout covers deadlines hit while waiting for the backend.
	KindTimeout
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindUnauthorized:
		return "unauthorized"
	case KindTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is the only error type returned by Store implementations.
type Error struct {
	Kind    ErrorKind
	Backend Type
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s store: %s: %v", e.Backend, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Retryable reports whether another attempt may succeed.
func (e *Error) Retryable() bool {
	return e.Kind == KindUnavailable || e.Kind == KindTimeout
}

// classifier maps a backend-specific error to a kind. ok is false when the
// error is not recognised.
type classifier func(err error) (kind ErrorKind, ok bool)

// Classify wraps err in an *Error for backend. Errors that are already
// classified are returned unchanged. Backend-specific classifiers run before
// the generic context, network and AWS checks.
func Classify(backend Type, err error, extra ...classifier) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return &Error{Kind: kindOf(err, extra...), Backend: backend, Err: err}
}

func kindOf(err error, extra ...classifier) ErrorKind {
	for _, c := range extra {
		if k, ok := c(err); ok {
			return k
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if k, ok := awsErrorKinds[apiErr.ErrorCode()]; ok {
			return k
		}
	}

	var statusErr interface{ HTTPStatusCode() int }
	if errors.As(err, &statusErr) {
		if k, ok := kindForStatus(statusErr.HTTPStatusCode()); ok {
			return k
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return KindUnavailable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return KindUnavailable
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return KindUnavailable
	}

	return KindUnknown
}

func kindForStatus(code int) (ErrorKind, bool) {
	switch {
	case code == 401 || code == 403:
		return KindUnauthorized, true
	case code == 408 || code == 504:
		return KindTimeout, true
	case code == 429 || code >= 500:
		return KindUnavailable, true
	}
	return KindUnknown, false
}

// awsErrorKinds covers the DynamoDB and S3 error codes we expect to see.
// Anything else (missing table, validation failures) stays KindUnknown.
var awsErrorKinds = map[string]ErrorKind{
	"AccessDeniedException":       KindUnauthorized,
	"AccessDenied":                KindUnauthorized,
	"UnrecognizedClientException": KindUnauthorized,
	"InvalidSignatureException":   KindUnauthorized,
	"SignatureDoesNotMatch":       KindUnauthorized,
	"MissingAuthenticationToken":  KindUnauthorized,
	"IncompleteSignature":         KindUnauthorized,
	"InvalidClientTokenId":        KindUnauthorized,
	"InvalidAccessKeyId":          KindUnauthorized,
	"ExpiredToken":                KindUnauthorized,
	"ExpiredTokenException":       KindUnauthorized,

	"ProvisionedThroughputExceededException": KindUnavailable,
	"ThrottlingException":                    KindUnavailable,
	"RequestLimitExceeded":                   KindUnavailable,
	"LimitExceededException":                 KindUnavailable,
	"InternalServerError":                    KindUnavailable,
	"InternalFailure":                        KindUnavailable,
	"InternalError":                          KindUnavailable,
	"ServiceUnavailable":                     KindUnavailable,
	"ServiceUnavailableException":            KindUnavailable,
	"SlowDown":                               KindUnavailable,

	"RequestTimeout":          KindTimeout,
	"RequestTimeoutException": KindTimeout,
}
