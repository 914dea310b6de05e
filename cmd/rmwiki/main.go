// Rmwiki serves a Rick and Morty character wiki over HTTP.
//
// The server pulls characters from the public Rick and Morty API, keeps
// them in process-wide stores and renders them as pages and JSON.
//
// Configuration is read from an optional YAML/TOML file and RMWIKI_*
// environment variables. See internal/config for details.
//
// Usage:
//
//	# Start server with defaults
//	rmwiki
//
//	# Use a config file and override the port
//	RMWIKI_SERVER_HTTP_PORT=8080 rmwiki -config ./rmwiki.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/rmwiki/internal/config"
	wikihttp "github.com/fyrsmithlabs/rmwiki/internal/http"
	"github.com/fyrsmithlabs/rmwiki/internal/logging"
	"github.com/fyrsmithlabs/rmwiki/internal/rickmorty"
	"github.com/fyrsmithlabs/rmwiki/internal/store"
	"github.com/fyrsmithlabs/rmwiki/internal/telemetry"
	"github.com/fyrsmithlabs/rmwiki/internal/wiki"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or TOML config file")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion(os.Stdout)
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  rmwiki [-config path]   Start the wiki server\n")
			fmt.Fprintf(os.Stderr, "  rmwiki version          Show version information\n")
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "rmwiki by Fyrsmith Labs\n")
	fmt.Fprintf(w, "Version:    %s\n", version)
	fmt.Fprintf(w, "Commit:     %s\n", gitCommit)
	fmt.Fprintf(w, "Build Date: %s\n", buildDate)
}

// run wires the wiki and blocks until ctx is cancelled.
//
//  1. Loads and validates configuration
//  2. Initializes telemetry, then the logger on top of it
//  3. Builds the API client, stores and loader
//  4. Starts the HTTP server and shuts everything down on cancellation
//
// Returns http.ErrServerClosed on graceful shutdown.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	tel, err := telemetry.New(ctx, telemetry.FromObservability(cfg.Observability, version))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	logCfg, err := logging.FromObservability(cfg.Observability)
	if err != nil {
		return fmt.Errorf("invalid logging configuration: %w", err)
	}
	logger, err := logging.NewLogger(logCfg, tel.LoggerProvider())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info(ctx, "starting rmwiki",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("api", cfg.API.BaseURL),
		zap.Bool("telemetry", tel.IsEnabled()),
	)

	client, err := rickmorty.New(rickmorty.ConfigFrom(cfg.API, cfg.Cache),
		rickmorty.WithLogger(logger),
		rickmorty.WithTracer(tel.Tracer("github.com/fyrsmithlabs/rmwiki/internal/rickmorty")),
		rickmorty.WithMetrics(rickmorty.NewMetrics()),
	)
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}

	stores := store.NewStores()
	loader := wiki.New(client, stores.Characters, stores.UI,
		wiki.WithFanOut(cfg.API.FanOut),
		wiki.WithLogger(logger),
		wiki.WithMetrics(wiki.NewMetrics()),
	)

	srv, err := wikihttp.NewServer(loader, stores, logger,
		&wikihttp.Config{
			Host:            cfg.Server.Host,
			Port:            cfg.Server.Port,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
		},
		wikihttp.WithBuildInfo(cfg.Observability.ServiceName, version),
		wikihttp.WithTracer(tel.Tracer("github.com/fyrsmithlabs/rmwiki/internal/http")),
		wikihttp.WithHTTPMetrics(wikihttp.NewHTTPMetrics(tel.Meter("github.com/fyrsmithlabs/rmwiki/internal/http"), logger)),
		wikihttp.WithTelemetryHealth(tel.Health),
	)
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	logger.Info(ctx, "server configured",
		zap.String("addr", srv.Addr()),
		zap.String("health_endpoint", "/health"),
		zap.String("metrics_endpoint", "/metrics"),
	)

	return srv.Start(ctx)
}
