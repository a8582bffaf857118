package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document statuses. A record is created upstream in pending state and
// moved to exactly one terminal state per processing attempt.
const (
	DocumentStatusPending = "pending"
	DocumentStatusReady   = "ready"
	DocumentStatusFailed  = "failed"
)

type Document struct {
	ID                   uuid.UUID  `gorm:"primaryKey"`
	Status               string     `gorm:"not null;default:pending"`
	FileName             string     `gorm:"not null"`
	ExtractedText        *string    `gorm:"type:text"`
	ExtractedPatientName *string    `gorm:"size:255"`
	ExtractedDob         *time.Time `gorm:"type:date"`
	ConfidenceScore      *float64
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type DocumentList []Document

func (Document) TableName() string {
	return "documents"
}

func (d Document) String() string {
	val, _ := json.Marshal(d)
	return string(val)
}
