package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/venyro/pkg/storage"
	"github.com/papercomputeco/venyro/pkg/storage/inmemory"
	"github.com/papercomputeco/venyro/pkg/storage/storagetest"
)

// brokenDriver fails every query.
type brokenDriver struct {
	*inmemory.Driver
}

func (brokenDriver) List(context.Context, storage.ListOptions) ([]*storage.Record, error) {
	return nil, errors.New("database is locked")
}

func (brokenDriver) Get(context.Context, string) (*storage.Record, error) {
	return nil, errors.New("database is locked")
}

func get(server *Server, path string) (*http.Response, []byte) {
	req, err := http.NewRequest(http.MethodGet, path, nil)
	Expect(err).NotTo(HaveOccurred())

	resp, err := server.app.Test(req)
	Expect(err).NotTo(HaveOccurred())

	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())
	return resp, body
}

var _ = Describe("Records API", func() {
	var (
		server *Server
		driver *inmemory.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger, _ := zap.NewDevelopment()
		driver = inmemory.NewDriver()
		server = NewServer(Config{ListenAddr: ":0"}, driver, logger)

		for i := range 4 {
			action := "inferStrategy"
			if i == 3 {
				action = "chatWithStrategy"
			}
			Expect(driver.Put(ctx, storagetest.NewRecord(fmt.Sprintf("rec-%d", i), action, i))).To(Succeed())
		}
	})

	Describe("GET /ping", func() {
		It("returns pong", func() {
			resp, body := get(server, "/ping")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))
			Expect(string(body)).To(Equal(`"pong"`))
		})
	})

	Describe("GET /records", func() {
		It("lists records newest first", func() {
			resp, body := get(server, "/records")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var list ListResponse
			Expect(json.Unmarshal(body, &list)).To(Succeed())
			Expect(list.Count).To(Equal(4))
			Expect(list.Records[0].ID).To(Equal("rec-3"))
		})

		It("filters by action and limit", func() {
			_, body := get(server, "/records?action=inferStrategy&limit=2")

			var list ListResponse
			Expect(json.Unmarshal(body, &list)).To(Succeed())
			Expect(list.Count).To(Equal(2))
			for _, r := range list.Records {
				Expect(r.Action).To(Equal("inferStrategy"))
			}
		})

		It("returns an empty list rather than null", func() {
			_, body := get(server, "/records?action=refineBlueprint")
			Expect(string(body)).To(MatchJSON(`{"count":0,"records":[]}`))
		})

		It("rejects an invalid limit", func() {
			resp, _ := get(server, "/records?limit=abc")
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))

			resp, _ = get(server, "/records?limit=0")
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})
	})

	Describe("GET /records/:id", func() {
		It("returns the record", func() {
			resp, body := get(server, "/records/rec-1")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var record storage.Record
			Expect(json.Unmarshal(body, &record)).To(Succeed())
			Expect(record.ID).To(Equal("rec-1"))
			Expect(string(record.Result)).To(MatchJSON(`{"score":82}`))
		})

		It("returns 404 for a missing record", func() {
			resp, body := get(server, "/records/nope")
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
			Expect(string(body)).To(MatchJSON(`{"error":"record not found"}`))
		})
	})

	Describe("GET /records/stats", func() {
		It("aggregates every record", func() {
			resp, body := get(server, "/records/stats")
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var stats storage.Stats
			Expect(json.Unmarshal(body, &stats)).To(Succeed())
			Expect(stats.Total).To(Equal(4))
			Expect(stats.ByAction).To(HaveKeyWithValue("inferStrategy", 3))
			Expect(stats.ByStatus).To(HaveKeyWithValue("succeeded", 4))
			Expect(stats.MeanAttempts).To(BeNumerically("==", 1))
		})
	})

	Describe("storage failures", func() {
		BeforeEach(func() {
			server = NewServer(Config{}, brokenDriver{Driver: driver}, nil)
		})

		It("returns 500 when listing fails", func() {
			resp, _ := get(server, "/records")
			Expect(resp.StatusCode).To(Equal(fiber.StatusInternalServerError))
		})

		It("returns 500 rather than 404 when lookup fails", func() {
			resp, _ := get(server, "/records/rec-1")
			Expect(resp.StatusCode).To(Equal(fiber.StatusInternalServerError))
		})
	})
})
