package jobs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/clinicore/intake-ocr/internal/pipeline"
)

const (
	DefaultQueue = "document_intake"

	// Redelivery on failure belongs to the queue layer, not the pipeline.
	MaxJobAttempts = 3
)

type Client struct {
	*river.Client[pgx.Tx]
}

// NewClient wires the document worker into a river client. MaxWorkers is
// 1: batches are worked one at a time, and jobs inside a batch run
// sequentially.
func NewClient(pool *pgxpool.Pool, processor *pipeline.Processor) (*Client, error) {
	workers := river.NewWorkers()
	river.AddWorker(workers, NewDocumentWorker(processor))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			DefaultQueue: {MaxWorkers: 1},
		},
		Workers: workers,
	})
	if err != nil {
		return nil, err
	}

	return &Client{Client: riverClient}, nil
}

// NewInsertOnlyClient builds a client that can enqueue batches but never
// works them. Used by the enqueue command.
func NewInsertOnlyClient(pool *pgxpool.Pool) (*Client, error) {
	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{})
	if err != nil {
		return nil, err
	}

	return &Client{Client: riverClient}, nil
}

// EnqueueBatch inserts one batch of job descriptors and returns the queue
// job id.
func (c *Client) EnqueueBatch(ctx context.Context, records []pipeline.JobDescriptor) (int64, error) {
	result, err := c.Insert(ctx, DocumentBatchArgs{Records: records}, &river.InsertOpts{
		Queue:       DefaultQueue,
		MaxAttempts: MaxJobAttempts,
	})
	if err != nil {
		return 0, err
	}
	return result.Job.ID, nil
}
