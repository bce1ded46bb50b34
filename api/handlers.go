package api

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/venyro/pkg/llm"
	"github.com/papercomputeco/venyro/pkg/storage"
)

// ListResponse is the body of GET /records.
type ListResponse struct {
	Count   int               `json:"count"`
	Records []*storage.Record `json:"records"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListRecords returns recent records, optionally filtered by action.
func (s *Server) handleListRecords(c *fiber.Ctx) error {
	opts := storage.ListOptions{Action: c.Query("action")}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "limit must be a positive integer"})
		}
		opts.Limit = limit
	}

	records, err := s.driver.List(c.UserContext(), opts)
	if err != nil {
		s.logger.Error("failed to list records", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to list records"})
	}
	if records == nil {
		records = []*storage.Record{}
	}

	return c.JSON(ListResponse{
		Count:   len(records),
		Records: records,
	})
}

// handleGetRecord returns a single record by its ID.
func (s *Server) handleGetRecord(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "id parameter required"})
	}

	record, err := s.driver.Get(c.UserContext(), id)
	if err != nil {
		var notFound storage.NotFoundError
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "record not found"})
		}
		s.logger.Error("failed to get record", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to get record"})
	}

	return c.JSON(record)
}

// handleStats returns counts by action and status and the mean attempt count.
func (s *Server) handleStats(c *fiber.Ctx) error {
	stats, err := s.driver.Stats(c.UserContext())
	if err != nil {
		s.logger.Error("failed to aggregate records", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: "failed to aggregate records"})
	}

	return c.JSON(stats)
}
