package jobs_test

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/clinicore/intake-ocr/internal/jobs"
	"github.com/clinicore/intake-ocr/internal/pipeline"
)

func TestJobs(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Jobs Suite")
}

var _ = Describe("DocumentBatchArgs", func() {
	Describe("Kind", func() {
		It("returns the correct job kind", func() {
			args := jobs.DocumentBatchArgs{}
			Expect(args.Kind()).To(Equal("document_batch"))
		})
	})

	Describe("InsertOpts", func() {
		It("returns default insert options", func() {
			args := jobs.DocumentBatchArgs{}
			opts := args.InsertOpts()
			Expect(opts.Queue).To(Equal(jobs.DefaultQueue))
			Expect(opts.MaxAttempts).To(Equal(jobs.MaxJobAttempts))
		})
	})

	Describe("Records", func() {
		It("round-trips through JSON for JSONB storage", func() {
			args := jobs.DocumentBatchArgs{
				Records: []pipeline.JobDescriptor{
					{DocumentID: uuid.New(), StorageKey: "uploads/scan.pdf", StorageBucket: "tenant-a"},
					{DocumentID: uuid.New(), StorageKey: "uploads/note.txt"},
				},
			}

			data, err := json.Marshal(args)
			Expect(err).To(BeNil())

			var decoded jobs.DocumentBatchArgs
			Expect(json.Unmarshal(data, &decoded)).To(BeNil())
			Expect(decoded.Records).To(Equal(args.Records))
		})
	})
})

var _ = Describe("DocumentWorker", func() {
	Describe("Timeout", func() {
		It("returns 5 minute timeout", func() {
			worker := jobs.NewDocumentWorker(nil)
			Expect(worker.Timeout(nil)).To(Equal(jobs.JobTimeout))
		})
	})
})
