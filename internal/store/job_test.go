package store_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/riverqueue/river/rivertype"
	"gorm.io/gorm"

	"github.com/clinicore/intake-ocr/internal/config"
	"github.com/clinicore/intake-ocr/internal/store"
)

var _ = Describe("job store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db

		// The queue layer owns this table in production; the test schema
		// only needs the columns this store reads.
		Expect(gormdb.AutoMigrate(&store.JobRow{})).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM river_job;")
	})

	insertJob := func(id int64, state rivertype.JobState, finalizedAt *time.Time) {
		tx := gormdb.Create(&store.JobRow{
			ID:          id,
			State:       state,
			Kind:        "document_batch",
			MaxAttempts: 3,
			ArgsJSON:    []byte(`{}`),
			FinalizedAt: finalizedAt,
		})
		Expect(tx.Error).To(BeNil())
	}

	Context("get", func() {
		It("successfully gets a job row", func() {
			insertJob(1, rivertype.JobStateAvailable, nil)

			job, err := s.Job().Get(context.TODO(), 1)
			Expect(err).To(BeNil())
			Expect(job.Kind).To(Equal("document_batch"))
			Expect(job.State).To(Equal(rivertype.JobStateAvailable))
		})

		It("returns not found for an unknown id", func() {
			_, err := s.Job().Get(context.TODO(), 42)
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("pending count", func() {
		It("counts only available jobs", func() {
			now := time.Now()
			insertJob(1, rivertype.JobStateAvailable, nil)
			insertJob(2, rivertype.JobStateAvailable, nil)
			insertJob(3, rivertype.JobStateCompleted, &now)
			insertJob(4, rivertype.JobStateDiscarded, &now)

			count, err := s.Job().PendingCount(context.TODO())
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(2)))
		})
	})

	Context("list failed", func() {
		It("returns discarded jobs, most recent first", func() {
			older := time.Now().Add(-time.Hour)
			newer := time.Now()
			insertJob(1, rivertype.JobStateDiscarded, &older)
			insertJob(2, rivertype.JobStateDiscarded, &newer)
			insertJob(3, rivertype.JobStateCompleted, &newer)

			jobs, err := s.Job().ListFailed(context.TODO(), 10)
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(2))
			Expect(jobs[0].ID).To(Equal(int64(2)))
			Expect(jobs[1].ID).To(Equal(int64(1)))
		})

		It("honors the limit", func() {
			now := time.Now()
			insertJob(1, rivertype.JobStateDiscarded, &now)
			insertJob(2, rivertype.JobStateDiscarded, &now)

			jobs, err := s.Job().ListFailed(context.TODO(), 1)
			Expect(err).To(BeNil())
			Expect(jobs).To(HaveLen(1))
		})
	})
})
