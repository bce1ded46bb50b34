// Package storagetest provides shared ginkgo specs that every storage.Driver
// implementation must pass.
package storagetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/venyro/pkg/storage"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// NewRecord returns a successful record started offset seconds after a fixed epoch.
func NewRecord(id, action string, offset int) *storage.Record {
	started := epoch.Add(time.Duration(offset) * time.Second)
	return &storage.Record{
		ID:           id,
		Action:       action,
		Model:        "gemini-2.5-flash",
		Status:       storage.StatusSucceeded,
		HTTPStatus:   200,
		Attempts:     1,
		StartedAt:    started,
		CompletedAt:  started.Add(1500 * time.Millisecond),
		DurationMs:   1500,
		Result:       json.RawMessage(`{"score":82}`),
		HistoryTurns: 0,
	}
}

// DescribeDriver registers the conformance specs for a driver. newDriver is
// called before each test and must return an empty store.
func DescribeDriver(name string, newDriver func() storage.Driver) bool {
	return Describe(name+" conformance", func() {
		var (
			driver storage.Driver
			ctx    context.Context
		)

		BeforeEach(func() {
			ctx = context.Background()
			driver = nil
			driver = newDriver()
		})

		AfterEach(func() {
			if driver != nil {
				Expect(driver.Close()).To(Succeed())
			}
		})

		Describe("Put and Get", func() {
			It("stores and retrieves a record", func() {
				record := NewRecord("rec-1", "inferStrategy", 0)
				Expect(driver.Put(ctx, record)).To(Succeed())

				got, err := driver.Get(ctx, "rec-1")
				Expect(err).NotTo(HaveOccurred())
				Expect(got.ID).To(Equal("rec-1"))
				Expect(got.Action).To(Equal("inferStrategy"))
				Expect(got.Model).To(Equal("gemini-2.5-flash"))
				Expect(got.Status).To(Equal(storage.StatusSucceeded))
				Expect(got.HTTPStatus).To(Equal(200))
				Expect(got.Attempts).To(Equal(1))
				Expect(got.DurationMs).To(Equal(int64(1500)))
				Expect(got.StartedAt).To(BeTemporally("==", record.StartedAt))
				Expect(got.CompletedAt).To(BeTemporally("==", record.CompletedAt))
				Expect(string(got.Result)).To(MatchJSON(`{"score":82}`))
			})

			It("stores failures without a result", func() {
				record := NewRecord("rec-2", "generateStrategy", 0)
				record.Status = storage.StatusFailed
				record.HTTPStatus = 500
				record.ErrorKind = "provider_overloaded"
				record.Error = "high load"
				record.Attempts = 3
				record.Result = nil
				Expect(driver.Put(ctx, record)).To(Succeed())

				got, err := driver.Get(ctx, "rec-2")
				Expect(err).NotTo(HaveOccurred())
				Expect(got.Status).To(Equal(storage.StatusFailed))
				Expect(got.ErrorKind).To(Equal("provider_overloaded"))
				Expect(got.Error).To(Equal("high load"))
				Expect(got.Result).To(BeEmpty())
			})

			It("rejects a duplicate ID", func() {
				Expect(driver.Put(ctx, NewRecord("dup", "inferStrategy", 0))).To(Succeed())
				Expect(driver.Put(ctx, NewRecord("dup", "inferStrategy", 1))).NotTo(Succeed())
			})

			It("rejects a nil record", func() {
				Expect(driver.Put(ctx, nil)).NotTo(Succeed())
			})

			It("returns NotFoundError for a missing record", func() {
				_, err := driver.Get(ctx, "missing")
				var notFound storage.NotFoundError
				Expect(errors.As(err, &notFound)).To(BeTrue())
				Expect(notFound.ID).To(Equal("missing"))
			})
		})

		Describe("List", func() {
			BeforeEach(func() {
				for i := range 5 {
					action := "inferStrategy"
					if i%2 == 1 {
						action = "chatWithStrategy"
					}
					Expect(driver.Put(ctx, NewRecord(fmt.Sprintf("rec-%d", i), action, i))).To(Succeed())
				}
			})

			It("returns the newest records first", func() {
				records, err := driver.List(ctx, storage.ListOptions{})
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(5))
				Expect(records[0].ID).To(Equal("rec-4"))
				Expect(records[4].ID).To(Equal("rec-0"))
			})

			It("filters by action", func() {
				records, err := driver.List(ctx, storage.ListOptions{Action: "chatWithStrategy"})
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(2))
				for _, r := range records {
					Expect(r.Action).To(Equal("chatWithStrategy"))
				}
			})

			It("applies the limit", func() {
				records, err := driver.List(ctx, storage.ListOptions{Limit: 2})
				Expect(err).NotTo(HaveOccurred())
				Expect(records).To(HaveLen(2))
				Expect(records[0].ID).To(Equal("rec-4"))
			})
		})

		Describe("Stats", func() {
			It("is empty for an empty store", func() {
				stats, err := driver.Stats(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(stats.Total).To(BeZero())
				Expect(stats.MeanAttempts).To(BeZero())
			})

			It("aggregates by action and status", func() {
				failed := NewRecord("rec-f", "inferStrategy", 2)
				failed.Status = storage.StatusFailed
				failed.Attempts = 3

				Expect(driver.Put(ctx, NewRecord("rec-a", "inferStrategy", 0))).To(Succeed())
				Expect(driver.Put(ctx, NewRecord("rec-b", "chatWithStrategy", 1))).To(Succeed())
				Expect(driver.Put(ctx, failed)).To(Succeed())

				stats, err := driver.Stats(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(stats.Total).To(Equal(3))
				Expect(stats.ByAction).To(Equal(map[string]int{"inferStrategy": 2, "chatWithStrategy": 1}))
				Expect(stats.ByStatus).To(Equal(map[string]int{"succeeded": 2, "failed": 1}))
				Expect(stats.MeanAttempts).To(BeNumerically("~", 5.0/3.0, 1e-9))
			})
		})
	})
}
