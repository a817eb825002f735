package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/Mindburn-Labs/contacts/pkg/contact"
	"github.com/Mindburn-Labs/contacts/pkg/handler"
)

// maxBodyBytes bounds request bodies on the local server. API Gateway caps
// payloads itself.
const maxBodyBytes = 1 << 20

// ServerConfig configures the local HTTP server.
type ServerConfig struct {
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewServer returns the HTTP handler serving POST /contacts and GET /healthz.
// A zero RateLimitRPS disables rate limiting.
func NewServer(ctx context.Context, h *handler.Handler, cfg ServerConfig, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "api")

	mux := http.NewServeMux()
	mux.Handle("/contacts", createContact(h, logger))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	var root http.Handler = mux
	if cfg.RateLimitRPS > 0 {
		root = NewRateLimiter(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware(root)
	}
	return RequestID(root)
}

func createContact(h *handler.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			messageResponse(http.StatusMethodNotAllowed, MsgMethodNotAllowed).Write(w)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			logger.WarnContext(r.Context(), "failed to read request body", "error", err)
			ToResponse(handler.Failure(&contact.DecodeError{Kind: contact.DecodeMalformed, Err: err})).Write(w)
			return
		}

		ToResponse(h.Handle(r.Context(), body)).Write(w)
	})
}
