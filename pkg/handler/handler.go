// Package handler runs the create-contact pipeline for a single invocation:
// decode, validate, assign an id, persist once, and report an Outcome.
//
// A Handler holds only read-only collaborators and is safe for concurrent
// use. It owns no retry logic; retries, when configured, live in the store.
package handler

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
	"github.com/Mindburn-Labs/contacts/pkg/idgen"
	"github.com/Mindburn-Labs/contacts/pkg/observability"
	"github.com/Mindburn-Labs/contacts/pkg/store"
)

// Handler sequences one invocation.
type Handler struct {
	store     store.Store
	ids       idgen.Generator
	logger    *slog.Logger
	telemetry *observability.Provider
}

// Option configures a Handler.
type Option func(*Handler)

// WithIDGenerator replaces the default UUID generator.
func WithIDGenerator(g idgen.Generator) Option {
	return func(h *Handler) { h.ids = g }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithTelemetry sets the tracing and metrics provider. The default is a
// disabled provider.
func WithTelemetry(p *observability.Provider) Option {
	return func(h *Handler) { h.telemetry = p }
}

// New creates a Handler writing to s.
func New(s store.Store, opts ...Option) *Handler {
	h := &Handler{
		store:  s,
		ids:    idgen.UUID{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.telemetry == nil {
		h.telemetry, _ = observability.New(context.Background(), &observability.Config{Enabled: false})
	}
	h.logger = h.logger.With("component", "handler")
	return h
}

// Handle runs the pipeline on body. It always returns exactly one Outcome;
// the first failing stage short-circuits to it.
func (h *Handler) Handle(ctx context.Context, body []byte) Outcome {
	ctx, finish := h.telemetry.TrackOperation(ctx, "contact.create")

	out := h.run(ctx, body)

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("contact.outcome", out.Kind.String()))
	if out.Kind == KindStoreFailed {
		finish(out.Err)
	} else {
		finish(nil)
	}
	return out
}

func (h *Handler) run(ctx context.Context, body []byte) Outcome {
	req, err := contact.Decode(body)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected request body", "error", err)
		return Failure(err)
	}
	h.logger.InfoContext(ctx, "received contact request",
		"first_name", req.FirstName,
		"last_name", req.LastName,
	)

	req, err = contact.Validate(req)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid contact request", "error", err)
		return Failure(err)
	}

	rec := contact.NewRecord(h.ids.NewID(), req)

	if err := h.put(ctx, rec); err != nil {
		attrs := []any{"id", rec.ID, "error", err}
		var se *store.Error
		if errors.As(err, &se) {
			attrs = append(attrs, "backend", string(se.Backend), "kind", se.Kind.String())
		}
		h.logger.ErrorContext(ctx, "failed to save contact", attrs...)
		return Failure(err)
	}

	h.logger.InfoContext(ctx, "contact saved", "id", rec.ID)
	return Success(rec)
}

func (h *Handler) put(ctx context.Context, rec contact.Record) error {
	ctx, finish := h.telemetry.TrackOperation(ctx, "store.put")
	// The id goes on the span only; as a metric attribute it would be unbounded.
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("contact.id", rec.ID))
	err := h.store.Put(ctx, rec)
	finish(err)
	return err
}
