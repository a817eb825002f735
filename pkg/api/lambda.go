package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
	"github.com/Mindburn-Labs/contacts/pkg/handler"
	"github.com/Mindburn-Labs/contacts/pkg/observability"
)

// EventFormat selects the API Gateway payload the function receives.
type EventFormat string

const (
	// EventFormatREST is the API Gateway REST (payload v1) proxy event.
	EventFormatREST EventFormat = "rest"
	// EventFormatHTTP is the HTTP API / function URL (payload v2) event.
	EventFormatHTTP EventFormat = "http"
)

// Flusher exports buffered telemetry before the runtime freezes the process.
type Flusher interface {
	ForceFlush(ctx context.Context) error
}

// Lambda adapts the handler to API Gateway events.
type Lambda struct {
	handler *handler.Handler
	flusher Flusher
	logger  *slog.Logger
}

// NewLambda creates the adapter. flusher may be nil.
func NewLambda(h *handler.Handler, flusher Flusher, logger *slog.Logger) *Lambda {
	if logger == nil {
		logger = slog.Default()
	}
	return &Lambda{handler: h, flusher: flusher, logger: logger.With("component", "lambda")}
}

// Entrypoint returns the function to pass to lambda.Start for format.
func (l *Lambda) Entrypoint(format EventFormat) (any, error) {
	switch format {
	case EventFormatREST, "":
		return l.HandleREST, nil
	case EventFormatHTTP:
		return l.HandleHTTP, nil
	default:
		return nil, fmt.Errorf("unsupported event format: %q", format)
	}
}

// HandleREST serves an API Gateway REST proxy event. Failures are reported
// in the response; the returned error is always nil so API Gateway never
// substitutes its own 502.
func (l *Lambda) HandleREST(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ctx = withInvocationID(ctx, req.RequestContext.RequestID)
	resp := l.invoke(ctx, req.Body, req.IsBase64Encoded)
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}, nil
}

// HandleHTTP serves an HTTP API or function URL event.
func (l *Lambda) HandleHTTP(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	ctx = withInvocationID(ctx, req.RequestContext.RequestID)
	resp := l.invoke(ctx, req.Body, req.IsBase64Encoded)
	return events.APIGatewayV2HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}, nil
}

func (l *Lambda) invoke(ctx context.Context, body string, isBase64 bool) Response {
	defer l.flush(ctx)

	raw := []byte(body)
	if isBase64 {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			l.logger.WarnContext(ctx, "failed to decode base64 body", "error", err)
			return ToResponse(handler.Failure(&contact.DecodeError{Kind: contact.DecodeMalformed, Err: err}))
		}
		raw = decoded
	}
	return ToResponse(l.handler.Handle(ctx, raw))
}

func (l *Lambda) flush(ctx context.Context) {
	if l.flusher == nil {
		return
	}
	if err := l.flusher.ForceFlush(ctx); err != nil {
		l.logger.WarnContext(ctx, "failed to flush telemetry", "error", err)
	}
}

// withInvocationID prefers the Lambda request id and falls back to the one
// assigned by API Gateway.
func withInvocationID(ctx context.Context, gatewayID string) context.Context {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return observability.WithRequestID(ctx, lc.AwsRequestID)
	}
	return observability.WithRequestID(ctx, gatewayID)
}
