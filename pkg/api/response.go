// Package api maps handler outcomes to JSON responses and exposes the
// handler over Lambda (API Gateway REST and HTTP API events) and a local
// net/http server.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gowebpki/jcs"

	"github.com/Mindburn-Labs/contacts/pkg/handler"
)

// Client-facing messages. Diagnostics never appear in responses.
const (
	MsgMissingBody      = "Missing request body"
	MsgMalformedBody    = "Failed to parse body"
	MsgSaveFailed       = "Failed to save contact"
	MsgMethodNotAllowed = "Method not allowed"
	MsgTooManyRequests  = "Too many requests"
)

const contentTypeJSON = "application/json"

// Response is a transport-neutral response.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

type messageBody struct {
	Message string `json:"message"`
}

// ToResponse maps an outcome to its status and body. The mapping is pure:
// the same outcome always yields byte-identical output.
func ToResponse(out handler.Outcome) Response {
	var status int
	var msg string

	switch out.Kind {
	case handler.KindSuccess:
		status = http.StatusOK
		msg = fmt.Sprintf("Hello %s %s!", out.Record.FirstName, out.Record.LastName)
	case handler.KindMissingBody:
		status = http.StatusBadRequest
		msg = MsgMissingBody
	case handler.KindMalformedBody:
		status = http.StatusBadRequest
		msg = MsgMalformedBody
	case handler.KindInvalidField:
		status = http.StatusBadRequest
		msg = "Invalid field: " + out.Field
	case handler.KindStoreFailed:
		status = http.StatusInternalServerError
		msg = MsgSaveFailed
	default:
		panic(fmt.Sprintf("api: unhandled outcome kind %v", out.Kind))
	}

	return messageResponse(status, msg)
}

func messageResponse(status int, msg string) Response {
	return Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": contentTypeJSON},
		Body:       string(encodeMessage(msg)),
	}
}

// encodeMessage renders {"message": msg} as RFC 8785 canonical JSON.
func encodeMessage(msg string) []byte {
	raw, err := json.Marshal(messageBody{Message: msg})
	if err != nil {
		panic(err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		// Marshal output of a single-string object is always valid input.
		panic(err)
	}
	return canonical
}

// Write copies r onto an http.ResponseWriter.
func (r Response) Write(w http.ResponseWriter) {
	for k, v := range r.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(r.StatusCode)
	_, _ = w.Write([]byte(r.Body))
}
