package store_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"github.com/clinicore/intake-ocr/internal/config"
	"github.com/clinicore/intake-ocr/internal/store"
	"github.com/clinicore/intake-ocr/internal/store/model"
)

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

var _ = Describe("document store", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
	)

	BeforeAll(func() {
		db, err := store.InitDB(config.NewDefault())
		Expect(err).To(BeNil())

		s = store.NewStore(db)
		gormdb = db

		Expect(s.InitialMigration()).To(BeNil())
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM documents;")
	})

	Context("get", func() {
		It("successfully gets a document", func() {
			created, err := s.Document().Create(context.TODO(), model.Document{
				ID:       uuid.New(),
				Status:   model.DocumentStatusPending,
				FileName: "referral.pdf",
			})
			Expect(err).To(BeNil())

			document, err := s.Document().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(document.Status).To(Equal(model.DocumentStatusPending))
			Expect(document.FileName).To(Equal("referral.pdf"))
			Expect(document.ExtractedText).To(BeNil())
		})

		It("returns not found for an unknown id", func() {
			_, err := s.Document().Get(context.TODO(), uuid.New())
			Expect(err).To(MatchError(store.ErrRecordNotFound))
		})
	})

	Context("update result", func() {
		It("moves a pending document to ready with all extracted fields", func() {
			created, err := s.Document().Create(context.TODO(), model.Document{
				ID:       uuid.New(),
				Status:   model.DocumentStatusPending,
				FileName: "record.png",
			})
			Expect(err).To(BeNil())

			dob := time.Date(1985, 3, 15, 0, 0, 0, 0, time.UTC)
			affected, err := s.Document().UpdateResult(context.TODO(), created.ID, store.UpdateResultParams{
				Status:               model.DocumentStatusReady,
				ExtractedText:        strPtr("Patient Name: John Smith\nDOB: 03/15/1985"),
				ExtractedPatientName: strPtr("John Smith"),
				ExtractedDob:         &dob,
				ConfidenceScore:      floatPtr(85.0),
			})
			Expect(err).To(BeNil())
			Expect(affected).To(Equal(int64(1)))

			document, err := s.Document().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(document.Status).To(Equal(model.DocumentStatusReady))
			Expect(*document.ExtractedText).To(Equal("Patient Name: John Smith\nDOB: 03/15/1985"))
			Expect(*document.ExtractedPatientName).To(Equal("John Smith"))
			Expect(document.ExtractedDob.Format("2006-01-02")).To(Equal("1985-03-15"))
			Expect(*document.ConfidenceScore).To(Equal(85.0))
		})

		It("moves a document to failed touching only the status", func() {
			created, err := s.Document().Create(context.TODO(), model.Document{
				ID:                   uuid.New(),
				Status:               model.DocumentStatusPending,
				FileName:             "scan.jpg",
				ExtractedPatientName: strPtr("Prior Value"),
			})
			Expect(err).To(BeNil())

			affected, err := s.Document().UpdateResult(context.TODO(), created.ID, store.UpdateResultParams{
				Status: model.DocumentStatusFailed,
			})
			Expect(err).To(BeNil())
			Expect(affected).To(Equal(int64(1)))

			document, err := s.Document().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())
			Expect(document.Status).To(Equal(model.DocumentStatusFailed))
			Expect(*document.ExtractedPatientName).To(Equal("Prior Value"))
			Expect(document.ExtractedText).To(BeNil())
			Expect(document.ConfidenceScore).To(BeNil())
		})

		It("is idempotent under redelivery", func() {
			created, err := s.Document().Create(context.TODO(), model.Document{
				ID:       uuid.New(),
				Status:   model.DocumentStatusPending,
				FileName: "note.txt",
			})
			Expect(err).To(BeNil())

			params := store.UpdateResultParams{
				Status:          model.DocumentStatusReady,
				ExtractedText:   strPtr("hello"),
				ConfidenceScore: floatPtr(100),
			}

			_, err = s.Document().UpdateResult(context.TODO(), created.ID, params)
			Expect(err).To(BeNil())
			first, err := s.Document().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())

			_, err = s.Document().UpdateResult(context.TODO(), created.ID, params)
			Expect(err).To(BeNil())
			second, err := s.Document().Get(context.TODO(), created.ID)
			Expect(err).To(BeNil())

			Expect(second.Status).To(Equal(first.Status))
			Expect(*second.ExtractedText).To(Equal(*first.ExtractedText))
			Expect(*second.ConfidenceScore).To(Equal(*first.ConfidenceScore))
			Expect(second.ExtractedPatientName).To(BeNil())
		})

		It("reports zero affected records for a deleted document without error", func() {
			affected, err := s.Document().UpdateResult(context.TODO(), uuid.New(), store.UpdateResultParams{
				Status: model.DocumentStatusReady,
			})
			Expect(err).To(BeNil())
			Expect(affected).To(Equal(int64(0)))
		})
	})
})
