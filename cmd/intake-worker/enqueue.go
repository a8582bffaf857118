package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clinicore/intake-ocr/internal/config"
	"github.com/clinicore/intake-ocr/internal/jobs"
	"github.com/clinicore/intake-ocr/internal/pipeline"
	"github.com/clinicore/intake-ocr/pkg/log"
)

var (
	enqueueDocumentID string
	enqueueStorageKey string
	enqueueBucket     string
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Enqueue a document processing job",
	RunE: func(cmd *cobra.Command, args []string) error {
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

		descriptor, err := pipeline.ParseJobDescriptor(enqueueDocumentID, enqueueStorageKey, enqueueBucket)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		if err := resolveDatabaseCredentials(ctx, cfg); err != nil {
			return fmt.Errorf("resolving database credentials: %w", err)
		}

		pool, err := newPgxPool(ctx, cfg)
		if err != nil {
			return fmt.Errorf("creating queue connection pool: %w", err)
		}
		defer pool.Close()

		client, err := jobs.NewInsertOnlyClient(pool)
		if err != nil {
			return fmt.Errorf("creating queue client: %w", err)
		}

		jobID, err := client.EnqueueBatch(ctx, []pipeline.JobDescriptor{descriptor})
		if err != nil {
			return fmt.Errorf("enqueueing document job: %w", err)
		}

		zap.S().Infow("document job enqueued",
			"job_id", jobID,
			"document_id", descriptor.DocumentID,
			"storage_key", descriptor.StorageKey)
		return nil
	},
}

func init() {
	enqueueCmd.Flags().StringVar(&enqueueDocumentID, "document-id", "", "document record id (uuid)")
	enqueueCmd.Flags().StringVar(&enqueueStorageKey, "storage-key", "", "object storage key of the document")
	enqueueCmd.Flags().StringVar(&enqueueBucket, "storage-bucket", "", "object storage bucket (defaults to the configured bucket)")
	_ = enqueueCmd.MarkFlagRequired("document-id")
	_ = enqueueCmd.MarkFlagRequired("storage-key")
}
