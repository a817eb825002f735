package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/Mindburn-Labs/contacts/pkg/api"
	"github.com/Mindburn-Labs/contacts/pkg/config"
	"github.com/Mindburn-Labs/contacts/pkg/handler"
	"github.com/Mindburn-Labs/contacts/pkg/observability"
	"github.com/Mindburn-Labs/contacts/pkg/store"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(Run(os.Args, os.Stdout, os.Stderr))
}

// startLambda and serveHTTP are variables so tests can run the wiring
// without a Lambda runtime or a listening socket.
var (
	startLambda = func(handler any, opts ...lambda.Option) {
		lambda.StartWithOptions(handler, opts...)
	}
	serveHTTP = func(ctx context.Context, srv *http.Server) error {
		return srv.ListenAndServe()
	}
)

// Run is the entrypoint for testing.
func Run(args []string, stdout, stderr io.Writer) int {
	cmd := ""
	if len(args) > 1 {
		cmd = args[1]
	}

	switch cmd {
	case "":
		// The Lambda runtime starts the binary without arguments.
		if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
			return runLambda(stderr)
		}
		return runServe(stderr)
	case "lambda":
		return runLambda(stderr)
	case "serve", "server":
		return runServe(stderr)
	case "create":
		return runCreate(args[2:], stdout, stderr)
	case "version", "--version":
		_, _ = fmt.Fprintf(stdout, "createcontact %s\n", version)
		return 0
	case "help", "--help", "-h":
		printUsage(stdout)
		return 0
	default:
		_, _ = fmt.Fprintf(stderr, "Unknown command: %s\n", cmd)
		printUsage(stderr)
		return 2
	}
}

func printUsage(w io.Writer) {
	_, _ = fmt.Fprint(w, `Usage: createcontact [command]

Commands:
  lambda    Serve API Gateway events (default inside the Lambda runtime)
  serve     Serve POST /contacts on $PORT (default elsewhere)
  create    Create a contact on a running server: create [-url URL] <first> <last>
  version   Print the version
  help      Show this help

Configuration is read from the environment and, optionally, the YAML file
named by CONTACTS_CONFIG_FILE.
`)
}

// app holds the collaborators built once per process.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	telemetry *observability.Provider
	store     store.Store
	handler   *handler.Handler
}

func bootstrap(ctx context.Context, stderr io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := observability.NewLogger(cfg.Log.Level, cfg.Log.Format, stderr)
	slog.SetDefault(logger)

	telemetry, err := observability.New(ctx, cfg.ObservabilityConfig(version))
	if err != nil {
		return nil, err
	}

	s, err := store.New(ctx, cfg.StoreConfig(), logger)
	if err != nil {
		_ = telemetry.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize contact store: %w", err)
	}

	h := handler.New(s,
		handler.WithLogger(logger),
		handler.WithTelemetry(telemetry),
	)

	return &app{cfg: cfg, logger: logger, telemetry: telemetry, store: s, handler: h}, nil
}

func (a *app) close(ctx context.Context) {
	if err := store.Close(a.store); err != nil {
		a.logger.WarnContext(ctx, "failed to close contact store", "error", err)
	}
	_ = a.telemetry.Shutdown(ctx)
}

func runLambda(stderr io.Writer) int {
	ctx := context.Background()
	a, err := bootstrap(ctx, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "createcontact: %v\n", err)
		return 1
	}

	fn, err := api.NewLambda(a.handler, a.telemetry, a.logger).Entrypoint(api.EventFormat(a.cfg.EventFormat))
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "createcontact: %v\n", err)
		a.close(ctx)
		return 1
	}

	a.logger.InfoContext(ctx, "starting lambda handler",
		"version", version,
		"event_format", a.cfg.EventFormat,
		"store", a.cfg.Store.Type,
	)
	startLambda(fn, lambda.WithEnableSIGTERM(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.close(shutdownCtx)
	}))
	return 0
}

func runServe(stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "createcontact: %v\n", err)
		return 1
	}

	srv := &http.Server{
		Addr: ":" + a.cfg.Server.Port,
		Handler: api.NewServer(ctx, a.handler, api.ServerConfig{
			RateLimitRPS:   a.cfg.Server.RateLimitRPS,
			RateLimitBurst: a.cfg.Server.RateLimitBurst,
		}, a.logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.InfoContext(ctx, "server listening", "addr", srv.Addr, "version", version, "store", a.cfg.Store.Type)
		errCh <- serveHTTP(ctx, srv)
	}()

	code := 0
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.ErrorContext(ctx, "server failed", "error", err)
			code = 1
		}
	case <-ctx.Done():
		a.logger.InfoContext(ctx, "shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.ErrorContext(shutdownCtx, "server shutdown failed", "error", err)
	}
	a.close(shutdownCtx)
	return code
}
