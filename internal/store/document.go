package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/clinicore/intake-ocr/internal/store/model"
)

// UpdateResultParams carries the terminal outcome of one processing
// attempt. Nil fields are left untouched, so a failed-status write only
// moves status and the updated timestamp.
type UpdateResultParams struct {
	Status               string
	ExtractedText        *string
	ExtractedPatientName *string
	ExtractedDob         *time.Time
	ConfidenceScore      *float64
}

type Document interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Document, error)
	Create(ctx context.Context, document model.Document) (*model.Document, error)
	UpdateResult(ctx context.Context, id uuid.UUID, params UpdateResultParams) (int64, error)
	InitialMigration() error
}

type DocumentStore struct {
	db *gorm.DB
}

// Make sure we conform to Document interface
var _ Document = (*DocumentStore)(nil)

func NewDocumentStore(db *gorm.DB) Document {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) InitialMigration() error {
	return s.db.AutoMigrate(&model.Document{})
}

func (s *DocumentStore) Get(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	var document model.Document
	result := s.db.WithContext(ctx).First(&document, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying document: %w", result.Error)
	}

	return &document, nil
}

func (s *DocumentStore) Create(ctx context.Context, document model.Document) (*model.Document, error) {
	result := s.db.WithContext(ctx).Create(&document)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("creating document: %w", result.Error)
	}

	return &document, nil
}

// UpdateResult persists one processing outcome against a document id and
// reports how many records were affected. Zero affected records is not an
// error: the record may have been legitimately deleted upstream and the
// job redelivered afterwards, so callers log it and move on. Re-invoking
// with the same arguments produces the same final state.
func (s *DocumentStore) UpdateResult(ctx context.Context, id uuid.UUID, params UpdateResultParams) (int64, error) {
	updates := map[string]any{
		"status": params.Status,
	}
	if params.ExtractedText != nil {
		updates["extracted_text"] = *params.ExtractedText
	}
	if params.ExtractedPatientName != nil {
		updates["extracted_patient_name"] = *params.ExtractedPatientName
	}
	if params.ExtractedDob != nil {
		updates["extracted_dob"] = *params.ExtractedDob
	}
	if params.ConfidenceScore != nil {
		updates["confidence_score"] = *params.ConfidenceScore
	}

	result := s.db.WithContext(ctx).Model(&model.Document{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("updating document result: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		zap.S().Named("store").Warnw("document result update affected no records", "document_id", id, "status", params.Status)
	}

	return result.RowsAffected, nil
}
