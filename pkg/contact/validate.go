package contact

import "strings"

// Validate checks that both name fields are non-empty once surrounding
// whitespace is removed. The request is returned unchanged on success.
func Validate(req Request) (Request, error) {
	if strings.TrimSpace(req.FirstName) == "" {
		return Request{}, &ValidationError{Field: FieldFirstName}
	}
	if strings.TrimSpace(req.LastName) == "" {
		return Request{}, &ValidationError{Field: FieldLastName}
	}
	return req, nil
}
