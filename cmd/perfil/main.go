// @title          Perfil API
// @version        1.0
// @description    Session lifecycle and profile management.
// @BasePath       /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/perfilapp/perfil/internal/api"
	"github.com/perfilapp/perfil/internal/api/metrics"
	"github.com/perfilapp/perfil/internal/core/domain"
	"github.com/perfilapp/perfil/internal/core/navigation"
	"github.com/perfilapp/perfil/internal/core/service"
	"github.com/perfilapp/perfil/internal/core/session"
	mongodb "github.com/perfilapp/perfil/internal/infrastructure/db/mongo"
	redisdb "github.com/perfilapp/perfil/internal/infrastructure/db/redis"
	"github.com/perfilapp/perfil/internal/infrastructure/http/handlers"
	"github.com/perfilapp/perfil/internal/infrastructure/identity"
	"github.com/perfilapp/perfil/internal/pkg/config"
	"github.com/perfilapp/perfil/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		log := logger.Init(logger.Options{Service: "perfil"})
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "perfil",
	})

	if err := run(ctx, cfg); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongo")

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	// --- Identity backend ---
	provider := identity.NewProvider(
		mongodb.NewAccountRepository(db),
		redisdb.NewAttemptLimiter(rdb, cfg.Session.MaxAttempts, cfg.Session.AttemptWindow),
		identity.Config{
			Secret:            cfg.Session.Secret,
			SessionTTL:        cfg.Session.TTL,
			RecentLoginWindow: cfg.Session.RecentLoginWindow,
			CheckInterval:     cfg.Session.CheckInterval,
		},
		logger.Component("identity"),
	)
	records := mongodb.NewProfileRepository(db)

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	// --- Core ---
	store := session.NewStore(logger.Component("session"))
	if err := store.Attach(provider); err != nil {
		return err
	}
	defer store.Detach()

	auth := service.NewAuthController(provider, records, logger.Component("auth"))
	profiles := service.NewProfileService(provider, records, logger.Component("profile"))
	editor := service.NewProfileEditor(profiles)

	views := navigation.NewRouter(logger.Component("navigation"))
	views.OnTransition(func(_, to domain.ViewState) {
		collector.SessionTransition(string(to))
		if to == domain.ViewUnauthenticated {
			editor.Reset()
		}
	})
	updates, unwatch := store.Watch()
	defer unwatch()

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Auth:     auth,
		Profiles: profiles,
		Editor:   editor,
		Sessions: store,
		Tokens:   provider,
		Checks: map[string]handlers.Check{
			"mongo": handlers.MongoCheck(db),
			"redis": handlers.RedisCheck(rdb),
		},
		Verifier: provider.Tokens(),
		Metrics:  collector,
		Gatherer: reg,
		Log:      logger.Component("http"),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return provider.Run(gctx)
	})
	g.Go(func() error {
		return views.Run(gctx, updates)
	})
	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
