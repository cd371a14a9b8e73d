// @title        standmarket API
// @version      1.0
// @description  Car marketplace: session resolution, route authorization, listings and leads.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/standmarket/marketplace/docs"
	"github.com/standmarket/marketplace/internal/api"
	"github.com/standmarket/marketplace/internal/api/handler"
	"github.com/standmarket/marketplace/internal/api/metrics"
	"github.com/standmarket/marketplace/internal/api/middleware"
	"github.com/standmarket/marketplace/internal/core/service"
	"github.com/standmarket/marketplace/internal/infrastructure/config"
	mongodb "github.com/standmarket/marketplace/internal/infrastructure/db/mongo"
	redisdb "github.com/standmarket/marketplace/internal/infrastructure/db/redis"
	"github.com/standmarket/marketplace/internal/infrastructure/identity"
	"github.com/standmarket/marketplace/internal/infrastructure/jobs"
	"github.com/standmarket/marketplace/internal/infrastructure/queue"
	"github.com/standmarket/marketplace/pkg/logger"
)

const (
	shutdownTimeout  = 10 * time.Second
	queueSampleEvery = 5 * time.Second
)

func main() {
	cfg := config.MustLoad()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "standmarket",
		Env:     cfg.Env,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	users := mongodb.NewUserRepository(db)
	remoteSessions := mongodb.NewSessionRepository(db)
	resets := mongodb.NewResetTokenRepository(db)
	profiles := mongodb.NewProfileRepository(db)
	listings := mongodb.NewListingRepository(db)
	leads := mongodb.NewLeadRepository(db)
	outbox := mongodb.NewOutbox(db, logger.For("outbox"))

	if err := mongodb.EnsureIndexes(ctx, users, remoteSessions, resets, profiles, listings, leads, outbox); err != nil {
		log.Fatal().Err(err).Msg("index setup failed")
	}

	// --- Notifications ---
	dispatcher := queue.NewDispatcher(cfg.Notify.Workers, cfg.Notify.QueueSize, outbox, metrics.DispatchObserver{}, logger.For("dispatcher"))
	// workers outlive the signal context so queued mail drains at shutdown
	workCtx, cancelWork := context.WithCancel(context.Background())
	defer cancelWork()
	dispatcher.Start(workCtx)
	go metrics.SampleQueueDepth(ctx, dispatcher.Pending, queueSampleEvery)

	// --- Session core ---
	gateway := identity.NewGateway(users, remoteSessions, resets, identity.Config{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
		ResetTTL:  cfg.Auth.ResetTTL,
	}, logger.For("identity"))
	policy := service.NewAdminPolicy(cfg.Auth.AdminEmail, cfg.Auth.BypassEmail, cfg.Auth.BypassPasswordHash)
	store := service.NewSessionStore()
	cache := redisdb.NewSessionCache(rdb, cfg.Session.CacheTTL)
	bus := metrics.InstrumentedBus{AuthEventBus: redisdb.NewAuthEventBus(rdb, cfg.Session.EventChannel, logger.For("auth_events"))}

	resolver := service.NewSessionResolver(gateway, cache, bus, store, policy, logger.For("session"))
	if err := resolver.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("auth event subscription failed")
	}
	defer resolver.Stop()

	authSvc := service.NewAuthService(service.AuthDeps{
		Gateway:  gateway,
		Profiles: profiles,
		Bus:      bus,
		States:   store,
		Resolver: resolver,
		Policy:   policy,
		Notify:   dispatcher,
		BaseURL:  cfg.PublicBaseURL,
	}, logger.For("auth"))
	listingSvc := service.NewListingService(listings, profiles, logger.For("listings"))
	leadSvc := service.NewLeadService(leads, listings, profiles, redisdb.NewLeadDedup(rdb), dispatcher, logger.For("leads"))
	profileSvc := service.NewProfileService(profiles, dispatcher, logger.For("profiles"))

	// --- Housekeeping ---
	scheduler := jobs.NewScheduler(cfg.Notify.HousekeepingSpec, gateway, store, cfg.Session.IdleTTL, logger.For("jobs"))
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("housekeeping schedule invalid")
	}

	// --- HTTP ---
	e := api.NewRouter(api.Deps{
		Log:            logger.For("http"),
		Cookies:        middleware.CookieConfig{Secure: cfg.Session.CookieSecure},
		TokenTTL:       cfg.Auth.TokenTTL,
		SessionRefresh: cfg.Session.Refresh,
		Resolver:       resolver,
		States:         store,
		Authorizer:     service.NewRouteAuthorizer(service.DefaultRoutes()),
		Auth:           authSvc,
		Listings:       listingSvc,
		Leads:          leadSvc,
		Profiles:       profileSvc,
		Checks: map[string]handler.DependencyCheck{
			"mongodb": func(ctx context.Context) error { return db.Client().Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	scheduler.Stop(shutdownCtx)
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Int("pending", dispatcher.Pending()).Msg("notification queue not drained")
		cancelWork()
	}
}
