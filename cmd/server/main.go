package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"donor-batch-ledger/internal/config"
	"donor-batch-ledger/internal/logging"
	"donor-batch-ledger/internal/repository"
	"donor-batch-ledger/internal/routes"
	"donor-batch-ledger/internal/services/batchentry"
	"donor-batch-ledger/internal/store"
)

func main() {
	cfg := config.DefaultConfig()
	fs := pflag.NewFlagSet("server", pflag.ExitOnError)
	cfgPath := fs.String("config", "", "config file (default $HOME/.batchledger/config.toml)")
	config.BindFlags(fs, &cfg)
	_ = fs.Parse(os.Args[1:])

	if err := config.Load(&cfg, *cfgPath, config.ChangedFlags(fs)); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogPretty)
	log.Info().Interface("config", cfg.Redacted()).Msg("configuration")

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(log))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	routes.RegisterRoutes(r, routes.Deps{
		Donors:     repository.NewDonorRepository(st),
		Campaigns:  repository.NewCampaignRepository(st),
		Donations:  repository.NewDonationRepository(st),
		Pledges:    repository.NewPledgeRepository(st),
		Incentives: repository.NewIncentiveRepository(st),
		Commits:    repository.NewBatchCommitRepository(st),
		Defaults: func(k batchentry.Kind) batchentry.Defaults {
			return batchentry.DefaultsFromConfig(cfg, k, time.Now())
		},
		Log: log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info().Msg("received signal, stopping...")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// corsConfig allows every origin when none is configured or "*" is listed.
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Donation-Count"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			origins = nil
			break
		}
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}
	c.AllowOrigins = origins
	return c
}
