package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/donaldgifford/empire-watcher/api/openapi"
	"github.com/donaldgifford/empire-watcher/internal/api/handlers"
	mw "github.com/donaldgifford/empire-watcher/internal/api/middleware"
	"github.com/donaldgifford/empire-watcher/internal/config"
	"github.com/donaldgifford/empire-watcher/internal/empire"
	"github.com/donaldgifford/empire-watcher/internal/engine"
	"github.com/donaldgifford/empire-watcher/internal/notify"
	"github.com/donaldgifford/empire-watcher/internal/store"
	"github.com/donaldgifford/empire-watcher/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the watcher and its API server",
		Long: "Runs an initial catalog snapshot, then keeps snapshotting on the\n" +
			"configured interval while consuming the live trade stream. The HTTP\n" +
			"API exposes probes, metrics, tracked items and a manual snapshot trigger.",
		RunE: runServe,
	}
}

// services bundles the long-lived components serve wires together.
type services struct {
	store   *store.MemoryStore
	engine  *engine.Engine
	limiter *empire.RateLimiter
	stream  *empire.StreamClient
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	slog.SetDefault(log)

	svc := buildServices(cfg, log)

	var streamStatus handlers.StreamStatus
	var streamer engine.Streamer
	if svc.stream != nil {
		streamStatus = svc.stream
		streamer = svc.stream
	}

	e := newServer(cfg, svc, streamStatus, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr, "rules", len(cfg.Skins), "stream", cfg.Stream.Enabled)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	if err := svc.engine.Run(ctx, cfg.Schedule.Interval, streamer); err != nil {
		return fmt.Errorf("running watcher: %w", err)
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func buildServices(cfg *config.Config, log *slog.Logger) *services {
	rl := empire.NewRateLimiter(
		cfg.Empire.RateLimit.PerSecond,
		cfg.Empire.RateLimit.Burst,
		empire.WithWindowLimit(cfg.Empire.RateLimit.WindowLimit, cfg.Empire.RateLimit.Window),
	)

	search := empire.NewSearchClient(cfg.Empire.APIKey,
		empire.WithBaseURL(cfg.Empire.BaseURL),
		empire.WithSearchRetry(cfg.Empire.MaxRetries, time.Second, 10*time.Second),
		empire.WithSearchRateLimiter(rl),
		empire.WithSearchLogger(logger.Component(log, "search")),
	)

	st := store.NewMemoryStore()

	eng := engine.NewEngine(cfg.Rules(), st, search, buildNotifier(cfg, log),
		engine.WithLogger(logger.Component(log, "engine")),
		engine.WithStaggerOffset(cfg.Schedule.StaggerOffset),
		engine.WithPageSize(cfg.Empire.PageSize),
		engine.WithItemURLBase(cfg.Empire.ItemURL),
	)

	svc := &services{store: st, engine: eng, limiter: rl}

	if cfg.Stream.Enabled {
		creds := empire.NewMetadataProvider(cfg.Empire.APIKey,
			empire.WithMetadataURL(cfg.Empire.BaseURL),
			empire.WithCredentialTTL(cfg.Stream.CredentialTTL),
			empire.WithMaxRetries(cfg.Stream.MaxRefreshRetries),
			empire.WithMetadataLogger(logger.Component(log, "metadata")),
		)
		svc.stream = empire.NewStreamClient(creds, eng.HandlePushedItem,
			empire.WithSocketURL(cfg.Empire.SocketURL),
			empire.WithNamespace(cfg.Empire.SocketNamespace),
			empire.WithReconnectDelay(cfg.Stream.ReconnectDelay),
			empire.WithStreamLogger(logger.Component(log, "stream")),
		)
	}

	return svc
}

func buildNotifier(cfg *config.Config, log *slog.Logger) notify.Notifier {
	if cfg.Notifications.Discord.Enabled {
		return notify.NewDiscordNotifier(cfg.Notifications.Discord.WebhookURL,
			notify.WithHTTPClient(&http.Client{Timeout: cfg.Notifications.Discord.Timeout}),
		)
	}
	log.Warn("discord notifications disabled, matches will only be logged")
	return notify.NewNoOpNotifier(logger.Component(log, "notify"))
}

func newServer(
	cfg *config.Config,
	svc *services,
	stream handlers.StreamStatus,
	log *slog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(mw.RequestLog(log), mw.Recovery(log), mw.Metrics(mw.WithSkipPaths(openapi.Paths...)))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("Empire Watcher API", Version))

	handlers.RegisterHealthRoutes(api, handlers.NewHealthHandler(svc.engine, stream))
	handlers.RegisterRulesRoutes(api, handlers.NewRulesHandler(svc.engine))
	handlers.RegisterItemRoutes(api, handlers.NewItemsHandler(svc.store))
	handlers.RegisterTriggerRoutes(api, handlers.NewSnapshotHandler(svc.engine))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(svc.limiter))
	handlers.RegisterSystemStateRoutes(api,
		handlers.NewSystemStateHandler(svc.engine, svc.store, svc.engine, stream))
	openapi.RegisterRoutes(e, api)

	return e
}
