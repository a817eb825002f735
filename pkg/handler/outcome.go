package handler

import (
	"errors"
	"fmt"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
)

// Kind tags an Outcome.
type Kind int

const (
	KindSuccess Kind = iota + 1
	KindMissingBody
	KindMalformedBody
	KindInvalidField
	KindStoreFailed
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindMissingBody:
		return "missing_body"
	case KindMalformedBody:
		return "malformed_body"
	case KindInvalidField:
		return "invalid_field"
	case KindStoreFailed:
		return "store_failed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Outcome is the result of one invocation. It is produced exactly once by
// Handle and consumed by the response mapper.
type Outcome struct {
	Kind Kind
	// Record is set for KindSuccess.
	Record contact.Record
	// Field is the offending wire field name for KindInvalidField.
	Field string
	// Err carries the diagnostic for failures. It is logged, never rendered.
	Err error
}

// Success wraps a persisted record.
func Success(rec contact.Record) Outcome {
	return Outcome{Kind: KindSuccess, Record: rec}
}

// Failure classifies err into a failure Outcome. Decode and validation errors
// map to their client-facing kinds; anything else is a store failure.
func Failure(err error) Outcome {
	var decErr *contact.DecodeError
	if errors.As(err, &decErr) {
		if decErr.Kind == contact.DecodeMissing {
			return Outcome{Kind: KindMissingBody, Err: err}
		}
		return Outcome{Kind: KindMalformedBody, Err: err}
	}

	var valErr *contact.ValidationError
	if errors.As(err, &valErr) {
		return Outcome{Kind: KindInvalidField, Field: valErr.Field, Err: err}
	}

	return Outcome{Kind: KindStoreFailed, Err: err}
}
