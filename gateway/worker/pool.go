// Package worker provides an asynchronous worker pool that persists gateway
// invocation records using the provided storage.Driver and announces them on
// the provided eventstream.Publisher.
//
// The pool keeps storage and event delivery off the gateway's HTTP hot path.
package worker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/venyro/pkg/eventstream"
	"github.com/papercomputeco/venyro/pkg/storage"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 15 * time.Second
)

// Job is a unit of work for the worker pool to execute against.
type Job struct {
	Record *storage.Record
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting records.
	Driver storage.Driver

	// Publisher is the optional event publisher notified after each record
	// is stored.
	Publisher eventstream.Publisher

	// Source is attached to every published event.
	Source eventstream.EventSource

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// JobTimeout bounds the storage and publish calls of a single job.
	JobTimeout time.Duration

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool processes storage jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, errors.New("storage driver is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.JobTimeout <= 0 {
		c.JobTimeout = defaultJobTimeout
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the job being dropped
func (p *Pool) Enqueue(job Job) bool {
	if job.Record == nil {
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			zap.String("record_id", job.Record.ID),
			zap.String("action", job.Record.Action),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			zap.String("record_id", job.Record.ID),
			zap.String("action", job.Record.Action),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the gateway HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("storage worker stopped", zap.Uint("worker_id", id))
}

// processJob stores the record and, once stored, publishes its event.
// Failures are logged; nothing is returned to the request that produced the record.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	record := job.Record
	if err := p.config.Driver.Put(ctx, record); err != nil {
		p.logger.Error("async record storage failed",
			zap.String("record_id", record.ID),
			zap.String("action", record.Action),
			zap.Error(err),
		)
		return
	}

	p.logger.Info("invocation recorded",
		zap.String("record_id", record.ID),
		zap.String("action", record.Action),
		zap.String("status", string(record.Status)),
		zap.Int("attempts", record.Attempts),
	)

	if p.config.Publisher == nil {
		return
	}

	event := eventstream.NewRecordedEvent(record, p.config.Source)
	if err := p.config.Publisher.PublishRecord(ctx, event); err != nil {
		p.logger.Warn("failed to publish recorded event",
			zap.String("record_id", record.ID),
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("published recorded event",
		zap.String("record_id", record.ID),
		zap.String("event_id", event.EventID),
	)
}
