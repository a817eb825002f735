// Package contact defines the contact payload accepted by the create-contact
// function, the record persisted for it, and the decode and validation steps
// that turn an untrusted request body into a record-ready value.
package contact

// Request is the decoded invocation payload.
type Request struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Record is the persisted contact. ID is assigned by the handler before the
// single write and is never derived from the request.
type Record struct {
	ID        string `json:"id" dynamodbav:"id"`
	FirstName string `json:"firstName" dynamodbav:"firstName"`
	LastName  string `json:"lastName" dynamodbav:"lastName"`
}

// NewRecord binds a validated request to a freshly generated id.
func NewRecord(id string, req Request) Record {
	return Record{
		ID:        id,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
}

// Wire names of the request fields, used in validation errors and responses.
const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
)
