package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/backoffice-audit/pkg/db"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/server/endpoints"
	gormstore "github.com/doodlesbykumbi/backoffice-audit/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/backoffice-audit/pkg/spool"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the event ingestion server",
	Long: `Run the event ingestion server.

Events are accepted on POST /events/{kind} with an HS256 bearer token signed
with jwt_secret. The token subject is the acting user id, or "system".

By default, database migrations are run on startup. Use --no-migrate to skip.
With --spool, the spool directory is watched alongside the server.`,
	Run: func(cmd *cobra.Command, args []string) {
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		withSpool, _ := cmd.Flags().GetBool("spool")
		listen, _ := cmd.Flags().GetString("listen")

		if err := serve(listen, !noMigrate, withSpool); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "listen address (overrides listen_address)")
	serveCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serveCmd.Flags().Bool("spool", false, "also watch spool_dir for event files")
}

func serve(listen string, migrateOnStart, withSpool bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.ListenAddress = listen
	}
	if cfg.JWTSecret == "" {
		return errors.New("jwt_secret is required to serve")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if migrateOnStart && cfg.AuditDatabase() != "" {
		logger.Info("running database migrations")
		if _, err := runMigrations(cfg.AuditDatabase(), ""); err != nil {
			return err
		}
	}

	p, err := newPipeline(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer p.Close()

	opts := server.Options{
		Config:      cfg,
		Events:      p.bus,
		Audit:       p.router,
		HealthStore: gormstore.NewHealthStore(p.db),
		Gatherer:    p.registry,
		Logger:      logger.Named("server"),
		AccessLog:   os.Stderr,
	}
	switch cfg.AuditDatabase() {
	case "":
	case cfg.DatabaseURL:
		opts.EntriesStore = gormstore.NewEntriesStore(p.db)
	default:
		auditDB, err := db.Connect(db.Config{URL: cfg.AuditDatabase(), LogLevel: cfg.LogLevel})
		if err != nil {
			return err
		}
		defer func() {
			if sqlDB, err := auditDB.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}()
		opts.EntriesStore = gormstore.NewEntriesStore(auditDB)
	}

	s := server.NewServer(opts)
	endpoints.RegisterAll(s)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 2)
	go func() { errs <- s.Start() }()
	if withSpool {
		w := spool.NewWatcher(cfg.SpoolDir, p.bus, logger.Named("spool"))
		go func() { errs <- w.Run(ctx) }()
	}

	select {
	case err := <-errs:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("listen", cfg.ListenAddress))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}
