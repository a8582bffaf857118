package main

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clinicore/intake-ocr/internal/config"
	"github.com/clinicore/intake-ocr/internal/jobs"
	"github.com/clinicore/intake-ocr/internal/ocr"
	"github.com/clinicore/intake-ocr/internal/pipeline"
	"github.com/clinicore/intake-ocr/internal/secrets"
	"github.com/clinicore/intake-ocr/internal/statusserver"
	"github.com/clinicore/intake-ocr/internal/storage"
	"github.com/clinicore/intake-ocr/internal/store"
	"github.com/clinicore/intake-ocr/pkg/log"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the intake OCR worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer zap.S().Info("intake worker stopped")

		cfg, err := config.New()
		if err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}

		logLvl, err := zap.ParseAtomicLevel(cfg.Worker.LogLevel)
		if err != nil {
			logLvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		}

		logger := log.InitLog(logLvl)
		defer func() { _ = logger.Sync() }()

		undo := zap.ReplaceGlobals(logger)
		defer undo()

		zap.S().Info("starting intake worker")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
		defer cancel()

		if err := resolveDatabaseCredentials(ctx, cfg); err != nil {
			zap.S().Fatalw("resolving database credentials", "error", err)
		}

		zap.S().Info("initializing data store")
		db, err := store.InitDB(cfg)
		if err != nil {
			zap.S().Fatalw("initializing data store", "error", err)
		}

		st := store.NewStore(db)
		defer st.Close()

		if err := st.InitialMigration(); err != nil {
			zap.S().Fatalw("running initial migration", "error", err)
		}

		pool, err := newPgxPool(ctx, cfg)
		if err != nil {
			zap.S().Fatalw("creating queue connection pool", "error", err)
		}
		defer pool.Close()

		fetcher, err := storage.NewMinioFetcher(
			storage.WithEndpoint(cfg.Storage.Endpoint),
			storage.WithAccessKey(cfg.Storage.AccessKey),
			storage.WithSecretKey(cfg.Storage.SecretKey),
			storage.WithSSL(cfg.Storage.UseSSL),
		)
		if err != nil {
			zap.S().Fatalw("creating storage fetcher", "error", err)
		}

		ocrTimeout, err := time.ParseDuration(cfg.Ocr.Timeout)
		if err != nil {
			zap.S().Fatalw("parsing OCR timeout", "error", err)
		}
		detector := ocr.NewHTTPClient(cfg.Ocr.Endpoint, ocrTimeout)

		processor := pipeline.NewProcessor(fetcher, detector, st, cfg.Storage.DefaultBucket)

		client, err := jobs.NewClient(pool, processor)
		if err != nil {
			zap.S().Fatalw("creating queue client", "error", err)
		}

		if err := client.Start(ctx); err != nil {
			zap.S().Fatalw("starting queue client", "error", err)
		}
		zap.S().Infof("consuming document jobs from queue %q", jobs.DefaultQueue)

		go func() {
			defer cancel()
			listener, err := net.Listen("tcp", cfg.Worker.StatusAddress)
			if err != nil {
				zap.S().Fatalw("creating status listener", "error", err)
			}

			server := statusserver.New(logger, cfg.Worker.StatusAddress, listener, st)
			if err := server.Run(ctx); err != nil {
				zap.S().Fatalw("running status server", "error", err)
			}
		}()

		<-ctx.Done()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer stopCancel()
		if err := client.Stop(stopCtx); err != nil {
			zap.S().Errorw("stopping queue client", "error", err)
		}

		return nil
	},
}

// resolveDatabaseCredentials fetches the credential bundle from the
// secrets store when one is configured, overriding the individual DB_*
// settings. It is consumed once, before the pools are built.
func resolveDatabaseCredentials(ctx context.Context, cfg *config.Config) error {
	if cfg.Database.CredentialsFile == "" {
		return nil
	}

	creds, err := secrets.NewFileProvider().DatabaseCredentials(ctx, cfg.Database.CredentialsFile)
	if err != nil {
		return err
	}

	cfg.Database.Hostname = creds.Host
	cfg.Database.Port = creds.Port
	cfg.Database.Name = creds.Name
	cfg.Database.User = creds.User
	cfg.Database.Password = creds.Password
	return nil
}

// newPgxPool builds the pgx pool backing the job queue. Kept small: the
// worker processes one batch at a time.
func newPgxPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if cfg.Database.Type != "pgsql" {
		return nil, fmt.Errorf("the job queue requires a postgres database, got %q", cfg.Database.Type)
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s",
		url.QueryEscape(cfg.Database.User),
		url.QueryEscape(cfg.Database.Password),
		cfg.Database.Hostname,
		cfg.Database.Port,
		cfg.Database.Name,
	)

	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	poolCfg.MaxConns = 2

	return pgxpool.NewWithConfig(ctx, poolCfg)
}
