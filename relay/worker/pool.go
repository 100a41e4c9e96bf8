// Package worker provides an asynchronous worker pool for recording completed
// streams via the provided Recorder.
//
// The pool decouples recording from the relay's HTTP hot path so that the
// client-relay-upstream interaction is fully transparent.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/streampipeco/streampipe/pkg/utils"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
)

// Job is a unit of work for the worker pool to execute against: one fully
// streamed completion.
type Job struct {
	RequestID  string
	Provider   string
	Completion string
	Tokens     int
	Duration   time.Duration
}

// Recorder persists a completed stream. Implementations must be safe for
// concurrent use by multiple workers.
type Recorder interface {
	Record(ctx context.Context, job Job) error
}

// LogRecorder is a Recorder that writes completions to the log. It is the
// default when no other Recorder is configured.
type LogRecorder struct {
	logger *slog.Logger
}

// NewLogRecorder creates a LogRecorder writing to the given logger.
func NewLogRecorder(logger *slog.Logger) *LogRecorder {
	return &LogRecorder{logger: logger}
}

func (r *LogRecorder) Record(_ context.Context, job Job) error {
	r.logger.Info("completion recorded",
		"request_id", job.RequestID,
		"provider", job.Provider,
		"tokens", job.Tokens,
		"duration", job.Duration,
		"completion_preview", utils.Truncate(job.Completion, 80),
	)
	return nil
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Recorder persists completed streams. Defaults to a LogRecorder.
	Recorder Recorder

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Logger is the provided slog logger
	Logger *slog.Logger
}

// Pool processes recording jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	if c.Recorder == nil {
		c.Recorder = NewLogRecorder(c.Logger)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
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
	select {
	case p.queue <- job:
		p.logger.Debug("job queued",
			"request_id", job.RequestID,
			"provider", job.Provider,
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"request_id", job.RequestID,
			"provider", job.Provider,
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// Call this during graceful shutdown after the relay HTTP server has stopped.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("recording worker stopped", "worker_id", id)
}

func (p *Pool) processJob(job Job) {
	ctx := context.Background()

	if err := p.config.Recorder.Record(ctx, job); err != nil {
		p.logger.Error("async completion recording failed",
			"request_id", job.RequestID,
			"provider", job.Provider,
			"error", err,
		)
		return
	}

	p.logger.Debug("completion processed",
		"request_id", job.RequestID,
		"provider", job.Provider,
	)
}
