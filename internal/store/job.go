package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riverqueue/river/rivertype"
	"gorm.io/gorm"
)

// JobRow represents a row from the river_job table.
type JobRow struct {
	ID          int64              `gorm:"column:id;primaryKey"`
	State       rivertype.JobState `gorm:"column:state"`
	Kind        string             `gorm:"column:kind"`
	Attempt     int                `gorm:"column:attempt"`
	MaxAttempts int                `gorm:"column:max_attempts"`
	ArgsJSON    []byte             `gorm:"column:args"`
	FinalizedAt *time.Time         `gorm:"column:finalized_at"`
}

// TableName specifies the table name for GORM
func (JobRow) TableName() string {
	return "river_job"
}

// Job interface for job-related database operations. The queue layer owns
// the table; this store only reads it for operator visibility.
type Job interface {
	Get(ctx context.Context, id int64) (*JobRow, error)
	PendingCount(ctx context.Context) (int64, error)
	ListFailed(ctx context.Context, limit int) ([]JobRow, error)
}

// JobStore implements the Job interface
type JobStore struct {
	db *gorm.DB
}

// Make sure we conform to Job interface
var _ Job = (*JobStore)(nil)

// NewJobStore creates a new job store
func NewJobStore(db *gorm.DB) Job {
	return &JobStore{db: db}
}

// Get retrieves a job by ID from the river_job table
func (s *JobStore) Get(ctx context.Context, id int64) (*JobRow, error) {
	var jobRow JobRow
	result := s.db.WithContext(ctx).First(&jobRow, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("querying job: %w", result.Error)
	}

	return &jobRow, nil
}

// PendingCount returns the number of jobs waiting to be worked.
func (s *JobStore) PendingCount(ctx context.Context) (int64, error) {
	var count int64
	result := s.db.WithContext(ctx).Model(&JobRow{}).Where("state = ?", rivertype.JobStateAvailable).Count(&count)
	if result.Error != nil {
		return 0, fmt.Errorf("counting pending jobs: %w", result.Error)
	}

	return count, nil
}

// ListFailed returns the most recently discarded jobs.
func (s *JobStore) ListFailed(ctx context.Context, limit int) ([]JobRow, error) {
	var jobs []JobRow
	result := s.db.WithContext(ctx).
		Where("state = ?", rivertype.JobStateDiscarded).
		Order("finalized_at DESC").
		Limit(limit).
		Find(&jobs)
	if result.Error != nil {
		return nil, fmt.Errorf("listing failed jobs: %w", result.Error)
	}

	return jobs, nil
}
