package jobs

import (
	"context"
	"time"

	"github.com/riverqueue/river"

	"github.com/clinicore/intake-ocr/internal/pipeline"
)

const (
	JobTimeout = 5 * time.Minute
	JobKind    = "document_batch"
)

type DocumentWorker struct {
	river.WorkerDefaults[DocumentBatchArgs]
	processor *pipeline.Processor
}

func NewDocumentWorker(processor *pipeline.Processor) *DocumentWorker {
	return &DocumentWorker{processor: processor}
}

// Timeout is the wall-clock budget for one batch. The pipeline defines no
// timeouts of its own.
func (w *DocumentWorker) Timeout(job *river.Job[DocumentBatchArgs]) time.Duration {
	return JobTimeout
}

func (w *DocumentWorker) Work(ctx context.Context, job *river.Job[DocumentBatchArgs]) error {
	// Check for cancellation before starting
	if err := ctx.Err(); err != nil {
		return err
	}

	return w.processor.ProcessBatch(ctx, job.Args.Records)
}
