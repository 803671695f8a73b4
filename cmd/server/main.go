// Command server runs the SkillSwap HTTP and websocket API.
//
// @title                       SkillSwap API
// @version                     1.0
// @description                 Skill exchange marketplace: listings, exchange requests, and realtime chat.
// @BasePath                    /api/v1
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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/skillswap-backend/internal/config"
	httpapi "github.com/tbourn/skillswap-backend/internal/http"
	"github.com/tbourn/skillswap-backend/internal/observability"
	"github.com/tbourn/skillswap-backend/internal/realtime"
	"github.com/tbourn/skillswap-backend/internal/repo"
	"github.com/tbourn/skillswap-backend/internal/search"
	"github.com/tbourn/skillswap-backend/internal/services"
	"github.com/tbourn/skillswap-backend/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const purgeEvery = 15 * time.Minute

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := sysutil.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogPretty)
	instance := sysutil.InstanceName("skillswap")
	logger = logger.With().Str("instance", instance).Logger()
	log.Logger = logger
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, observability.Build{Version: version, Instance: instance})
	if err != nil {
		logger.Fatal().Err(err).Msg("otel setup")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("migrate database")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			logger.Fatal().Err(err).Msg("gorm tracing")
		}
	}

	idx := search.New()
	n, err := services.NewSkillService(db, nil, idx).Reindex(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("build search index")
	}
	logger.Info().Int("skills", n).Msg("search index built")

	reg := realtime.NewRegistry(logger)

	var (
		relay *realtime.Relay
		nc    *nats.Conn
	)
	if cfg.NATS.URL != "" {
		nc, err = realtime.ConnectNATS(cfg.NATS.URL, instance, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect nats")
		}
		relay = realtime.NewRelay(nc, cfg.NATS.SubjectPrefix, reg, logger)
		if _, err := relay.Subscribe(nc); err != nil {
			logger.Fatal().Err(err).Msg("subscribe relay")
		}
		logger.Info().Str("relay", relay.Instance()).Str("prefix", cfg.NATS.SubjectPrefix).Msg("nats relay active")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, httpapi.Deps{
		DB:       db,
		Index:    idx,
		Registry: reg,
		Notify:   realtime.NewRouter(reg, relay, logger),
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go purgeIdempotency(ctx, db, logger)

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("version", version).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	// Hijacked websocket conns are not tracked by Shutdown.
	logger.Info().Int("closed", reg.CloseAll()).Msg("websockets closed")

	if nc != nil {
		if err := nc.Drain(); err != nil {
			logger.Error().Err(err).Msg("nats drain")
		}
	}
	if err := shutdownOTel(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("otel shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func purgeIdempotency(ctx context.Context, db *gorm.DB, logger zerolog.Logger) {
	t := time.NewTicker(purgeEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now)
			if err != nil {
				logger.Warn().Err(err).Msg("purge idempotency keys")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("purged", n).Msg("idempotency keys expired")
			}
		}
	}
}
