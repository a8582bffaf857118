package jobs

import (
	"github.com/riverqueue/river"

	"github.com/clinicore/intake-ocr/internal/pipeline"
)

// DocumentBatchArgs contains one delivered batch of document job
// descriptors. This is stored in river_job.args as JSON.
type DocumentBatchArgs struct {
	Records []pipeline.JobDescriptor `json:"records"`
}

// Kind returns the job kind for River registration.
func (DocumentBatchArgs) Kind() string {
	return JobKind
}

// InsertOpts returns the default insert options for this job type.
func (DocumentBatchArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       DefaultQueue,
		MaxAttempts: MaxJobAttempts,
	}
}
