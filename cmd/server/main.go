// Package main is the entry point for the guild price board service.
//
// The service imports the guild's published spreadsheet, reconciles the
// offered goods against live exchange quotes, recomputes guild prices and
// serves the result over an HTTP API. Exports are written as JSON documents
// and optionally pushed to a GitHub repository on a schedule.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/titguild/guildboard/internal/clients/exchange"
	"github.com/titguild/guildboard/internal/config"
	"github.com/titguild/guildboard/internal/database"
	"github.com/titguild/guildboard/internal/modules/companies"
	"github.com/titguild/guildboard/internal/modules/export"
	"github.com/titguild/guildboard/internal/modules/sheets"
	"github.com/titguild/guildboard/internal/modules/snapshot"
	"github.com/titguild/guildboard/internal/scheduler"
	"github.com/titguild/guildboard/internal/server"
	"github.com/titguild/guildboard/internal/services"
	"github.com/titguild/guildboard/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Int("port", cfg.Port).
		Str("data_dir", cfg.DataDir).
		Bool("publish_enabled", cfg.GitHubToken != "" && cfg.GitHubRepo != "").
		Msg("Starting guild price board")

	db, err := database.New(database.Config{
		Path: filepath.Join(cfg.DataDir, "guildboard.db"),
		Name: "guildboard",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	repo := companies.NewRepository(db.Conn(), log)
	if err := repo.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize companies schema")
	}
	archive := snapshot.NewArchive(db.Conn(), log)
	if err := archive.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize snapshot schema")
	}

	datasets := services.NewDatasetService(repo, archive, log)
	if err := datasets.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load stored dataset")
	}

	exporter := export.NewExporter(cfg.ExportDir, log)
	publisher := export.NewPublisher(
		cfg.GitHubRepo,
		cfg.GitHubBranch,
		cfg.GitHubToken,
		time.Duration(cfg.PublishMinIntervalS)*time.Second,
		log,
	)

	refresh := services.NewRefreshService(
		datasets,
		sheets.NewClient(log),
		sheets.NewParser(sheets.DefaultLayout(), log),
		exchange.NewClient(cfg.ExchangeURL, log),
		exporter,
		publisher,
		cfg.SheetURL,
		log,
	)

	sched := scheduler.New(log)
	if cfg.SheetURL != "" {
		if err := sched.AddJob(cfg.SheetRefreshSchedule, scheduler.NewSheetRefreshJob(refresh, log)); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule sheet refresh")
		}
	} else {
		log.Warn().Msg("GUILD_SHEET_URL not set, sheet refresh job disabled")
	}
	if err := sched.AddJob(cfg.PriceRefreshSchedule, scheduler.NewPriceRefreshJob(refresh)); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule price refresh")
	}
	if publisher.Enabled() {
		if err := sched.AddJob(cfg.PublishSchedule, scheduler.NewPublishJob(refresh)); err != nil {
			log.Fatal().Err(err).Msg("Failed to schedule publish")
		}
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:       log,
		DB:        db,
		Datasets:  datasets,
		Refresh:   refresh,
		Publisher: publisher,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	sched.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	if err := db.WALCheckpoint("TRUNCATE"); err != nil {
		log.Warn().Err(err).Msg("WAL checkpoint on shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
