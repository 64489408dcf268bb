// Command blitzr-proxy streams paginated Blitzr catalog lists as
// newline-delimited JSON.
//
// Each streaming request drives one generator: pages are fetched from the
// API only as fast as the HTTP client reads, and a client that disconnects
// stops the fetching.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/blitzr-client/pkg/blitzr"
	"github.com/Sternrassler/blitzr-client/pkg/config"
	"github.com/Sternrassler/blitzr-client/pkg/logging"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("blitzr-proxy stopped")
	}
}

func run() error {
	opts := []config.Option{config.WithEnvFile(".env")}
	if path := os.Getenv("BLITZR_CONFIG_FILE"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var redisClient *redis.Client
	if opts := cfg.RedisOptions(); opts != nil {
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
	}

	catalog, err := blitzr.New(cfg.ClientConfig(redisClient))
	if err != nil {
		return fmt.Errorf("create catalog client: %w", err)
	}
	defer catalog.Close()

	srv := newServer(catalog, redisClient, cfg)

	g, gctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(srv.routes(), "blitzr-proxy"),
		ReadHeaderTimeout: 10 * time.Second,
		// Streams end when the process shuts down.
		BaseContext: func(net.Listener) context.Context { return gctx },
	}

	g.Go(func() error {
		logger.Info().
			Str("addr", httpServer.Addr).
			Str("base_url", cfg.BaseURL).
			Int("batch_size", cfg.BatchSize).
			Msg("Starting blitzr proxy")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
