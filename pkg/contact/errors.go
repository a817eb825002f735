package contact

import "fmt"

// DecodeErrorKind enumerates the ways a request body can fail to decode.
type DecodeErrorKind int

const (
	// DecodeMissing means the invocation carried no body at all.
	DecodeMissing DecodeErrorKind = iota + 1
	// DecodeMalformed means the body was not valid JSON or did not match the
	// request schema.
	DecodeMalformed
)

func (k DecodeErrorKind) String() string {
	switch k {
	case DecodeMissing:
		return "missing"
	case DecodeMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("DecodeErrorKind(%d)", int(k))
	}
}

// DecodeError is returned by Decode. Err holds the parser or schema
// diagnostic; it is meant for logs, not for clients.
type DecodeError struct {
	Kind DecodeErrorKind
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode request body (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("decode request body (%s)", e.Kind)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError reports a required field that is empty after trimming.
// Field is the wire name of the field.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field: %s", e.Field)
}
