package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clinicore/intake-ocr/internal/extraction"
	"github.com/clinicore/intake-ocr/internal/ocr"
	"github.com/clinicore/intake-ocr/internal/storage"
	"github.com/clinicore/intake-ocr/internal/store"
	"github.com/clinicore/intake-ocr/internal/store/model"
	"github.com/clinicore/intake-ocr/pkg/metrics"
)

// JobDescriptor is the minimal message describing which document to
// process and where to fetch its bytes. It is consumed once per delivery
// and never persisted here.
type JobDescriptor struct {
	DocumentID    uuid.UUID `json:"document_id"`
	StorageKey    string    `json:"storage_key"`
	StorageBucket string    `json:"storage_bucket,omitempty"`
}

// ParseJobDescriptor validates raw descriptor fields as supplied on the
// command line or by an upstream producer.
func ParseJobDescriptor(documentID, storageKey, storageBucket string) (JobDescriptor, error) {
	id, err := uuid.Parse(documentID)
	if err != nil {
		return JobDescriptor{}, fmt.Errorf("invalid document id %q: %w", documentID, err)
	}
	if storageKey == "" {
		return JobDescriptor{}, errors.New("storage key is required")
	}

	return JobDescriptor{
		DocumentID:    id,
		StorageKey:    storageKey,
		StorageBucket: storageBucket,
	}, nil
}

// ExtractionResult is the transient outcome computed for one job.
// ConfidenceScore is always defined when extraction succeeds: 100 for
// direct text, 0 when OCR returned no scored blocks.
type ExtractionResult struct {
	FullText        string
	PatientName     *string
	DateOfBirth     *string
	ConfidenceScore float64
}

// Processor drives one document job through fetch, text resolution,
// extraction and the terminal record write.
type Processor struct {
	fetcher       storage.Fetcher
	detector      ocr.Client
	store         store.Store
	defaultBucket string
}

func NewProcessor(fetcher storage.Fetcher, detector ocr.Client, s store.Store, defaultBucket string) *Processor {
	return &Processor{
		fetcher:       fetcher,
		detector:      detector,
		store:         s,
		defaultBucket: defaultBucket,
	}
}

// ProcessBatch works jobs sequentially, in delivery order. Jobs are
// independent: a failure is recorded and the batch moves on. The last
// failure, if any, is returned after every job was attempted so the queue
// layer can decide on redelivery.
func (p *Processor) ProcessBatch(ctx context.Context, jobs []JobDescriptor) error {
	var lastErr error
	for _, job := range jobs {
		if err := p.Process(ctx, job); err != nil {
			zap.S().Named("pipeline").Errorw("document job failed",
				"document_id", job.DocumentID,
				"storage_key", job.StorageKey,
				"error", err)
			lastErr = err
		}
	}
	return lastErr
}

// Process runs one job to its terminal state: ready with all extracted
// fields on success, failed (status and timestamp only) on any error.
// The original error is returned after the failure write completed.
func (p *Processor) Process(ctx context.Context, job JobDescriptor) error {
	bucket := job.StorageBucket
	if bucket == "" {
		bucket = p.defaultBucket
	}

	result, err := p.extract(ctx, bucket, job.StorageKey)
	if err != nil {
		p.markFailed(ctx, job.DocumentID)
		metrics.IncreaseDocumentsProcessedMetric(model.DocumentStatusFailed)
		return err
	}

	params := store.UpdateResultParams{
		Status:               model.DocumentStatusReady,
		ExtractedText:        &result.FullText,
		ExtractedPatientName: result.PatientName,
		ConfidenceScore:      &result.ConfidenceScore,
	}
	if result.DateOfBirth != nil {
		if dob, err := time.Parse("2006-01-02", *result.DateOfBirth); err == nil {
			params.ExtractedDob = &dob
		}
	}

	affected, err := p.store.Document().UpdateResult(ctx, job.DocumentID, params)
	if err != nil {
		p.markFailed(ctx, job.DocumentID)
		metrics.IncreaseDocumentsProcessedMetric(model.DocumentStatusFailed)
		return err
	}

	zap.S().Named("pipeline").Infow("document processed",
		"document_id", job.DocumentID,
		"confidence", result.ConfidenceScore,
		"records_affected", affected)
	metrics.IncreaseDocumentsProcessedMetric(model.DocumentStatusReady)

	return nil
}

func (p *Processor) extract(ctx context.Context, bucket, key string) (ExtractionResult, error) {
	data, err := p.fetcher.Fetch(ctx, bucket, key)
	if err != nil {
		return ExtractionResult{}, err
	}

	var fullText string
	var score float64

	if extraction.IsPlainText(key) {
		fullText = string(data)
		score = extraction.DirectTextConfidence
	} else {
		blocks, err := p.detector.DetectText(ctx, data)
		if err != nil {
			return ExtractionResult{}, err
		}
		fullText = ocr.LineText(blocks)
		score = extraction.AggregateConfidence(blocks)
	}

	return ExtractionResult{
		FullText:        fullText,
		PatientName:     extraction.ExtractPatientName(fullText),
		DateOfBirth:     extraction.ExtractDateOfBirth(fullText),
		ConfidenceScore: score,
	}, nil
}

// markFailed writes the failed status best-effort. A second failure while
// marking failure is swallowed so it never masks the original error, but
// it is logged and counted.
func (p *Processor) markFailed(ctx context.Context, documentID uuid.UUID) {
	_, err := p.store.Document().UpdateResult(ctx, documentID, store.UpdateResultParams{
		Status: model.DocumentStatusFailed,
	})
	if err != nil {
		zap.S().Named("pipeline").Errorw("failed to record document failure",
			"document_id", documentID,
			"error", err)
		metrics.IncreaseFailureWritesDroppedMetric()
	}
}
