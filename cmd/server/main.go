// Command server runs the campaign escrow API: HTTP transport, the SQLite
// store, and the deadline lifecycle sweeper, with graceful shutdown on
// SIGINT/SIGTERM.
//
//	@title        Campaign Escrow API
//	@version      1.0
//	@description  Campaign lifecycle, commitments, and the append-only escrow ledger for collective-buying campaigns.
//	@BasePath     /api/v1
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
	"github.com/rs/zerolog/log"

	_ "github.com/alpmera/campaign-backend/docs"
	"github.com/alpmera/campaign-backend/internal/config"
	httpapi "github.com/alpmera/campaign-backend/internal/http"
	"github.com/alpmera/campaign-backend/internal/jobs"
	"github.com/alpmera/campaign-backend/internal/observability"
	"github.com/alpmera/campaign-backend/internal/repo"
	"github.com/alpmera/campaign-backend/internal/services"
	"github.com/alpmera/campaign-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTEL.Enabled {
		shutdown, err := observability.SetupOTel(ctx, cfg.OTEL, version)
		if err != nil {
			log.Fatal().Err(err).Msg("otel setup failed")
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				log.Warn().Err(err).Msg("otel shutdown failed")
			}
		}()
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("opening database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	r := gin.New()
	httpapi.RegisterRoutes(r, db, cfg)

	if cfg.Lifecycle.Enabled {
		sweeper := &jobs.LifecycleSweeper{
			DB:        db,
			Campaigns: services.NewCampaignService(db),
			Outcomes: &services.OutcomeService{
				DB:             db,
				Escrow:         &services.EscrowService{DB: db},
				IdempotencyTTL: cfg.IdempotencyTTL,
			},
			Interval: cfg.Lifecycle.Interval,
		}
		go sweeper.Run(ctx)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	log.Info().Msg("bye")
}
