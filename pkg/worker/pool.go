// Package worker provides an asynchronous worker pool that persists finished
// assistant turns to the provided storage.Driver and announces them on the
// provided eventstream.Publisher.
//
// The pool keeps storage and publishing off the chat loop so the next prompt
// is never blocked on a database or broker round trip.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/conversation"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/eventstream"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/eventstream/nop"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/logger"
	"github.com/nexprism/lms-Admin-panel-edrila-sub002/pkg/storage"
)

var (
	defaultNumWorkers   uint = 2
	defaultJobQueueSize uint = 64
	defaultJobTimeout        = 10 * time.Second
)

// Job is one finished exchange.
type Job struct {
	RoomID string

	// Turn holds the messages the session sealed, user message first.
	Turn []conversation.Message

	State     conversation.State
	Err       error
	StartedAt time.Time
	Duration  time.Duration
	Frames    int
}

// Config is the configuration options for the worker pool.
type Config struct {
	// Driver is the storage backend for persisting turns.
	Driver storage.Driver

	// Publisher receives a TurnCompletedEvent per job. Defaults to a no-op.
	Publisher eventstream.Publisher

	// Source is stamped on every published event.
	Source eventstream.EventSource

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 64).
	QueueSize uint

	// JobTimeout bounds storing and publishing one job (defaults to 10s).
	// Close waits at most this long per queued job.
	JobTimeout time.Duration

	// Now is the clock used for event timestamps.
	Now func() time.Time

	Logger *slog.Logger
}

// Pool processes turn jobs asynchronously via a worker pool.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	closeOnce sync.Once
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Driver == nil {
		return nil, fmt.Errorf("worker pool requires a storage driver")
	}
	if c.Publisher == nil {
		c.Publisher = nop.NewPublisher()
	}
	if c.Now == nil {
		c.Now = time.Now
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

	wp := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: logger.OrNop(c.Logger),
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
			"room_id", job.RoomID,
			"state", job.State.String(),
		)
		return true
	default:
		p.logger.Error("job not queued, queue full, job dropped",
			"room_id", job.RoomID,
			"state", job.State.String(),
		)
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
// It is safe to call more than once. Enqueue must not be called after Close.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		close(p.queue)
		p.wg.Wait()
	})
}

// worker is the inner worker thread that continuously pulls jobs off the jobs queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("worker stopped", "worker_id", id)
}

// processJob stores the turn, then publishes its event. A storage failure is
// logged and the event is still published with the failure noted. Both share
// one JobTimeout deadline.
func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.JobTimeout)
	defer cancel()

	storeErr := p.storeTurn(ctx, job)
	if storeErr != nil {
		p.logger.Error("turn storage failed",
			"room_id", job.RoomID,
			"error", storeErr,
		)
	}

	event := p.buildEvent(job)
	if err := p.config.Publisher.PublishTurn(ctx, event); err != nil {
		p.logger.Warn("turn event not published",
			"room_id", job.RoomID,
			"event_id", event.EventID,
			"error", err,
		)
		return
	}

	p.logger.Debug("turn processed",
		"room_id", job.RoomID,
		"messages", len(job.Turn),
		"stored", storeErr == nil,
	)
}

// storeTurn appends the turn to its room. A turn without a room id was never
// acknowledged by the server and is not stored.
func (p *Pool) storeTurn(ctx context.Context, job Job) error {
	if len(job.Turn) == 0 {
		return nil
	}
	if job.RoomID == "" {
		p.logger.Debug("skipping storage for turn without room", "messages", len(job.Turn))
		return nil
	}

	if err := p.config.Driver.AppendMessages(ctx, job.RoomID, job.Turn...); err != nil {
		return fmt.Errorf("appending turn to room %s: %w", job.RoomID, err)
	}
	return nil
}

func (p *Pool) buildEvent(job Job) *eventstream.TurnCompletedEvent {
	now := p.config.Now()

	event := eventstream.NewTurnCompletedEvent(job.RoomID, now)
	event.Source = p.config.Source
	event.Outcome = job.State.String()
	if job.Err != nil {
		event.Error = job.Err.Error()
	}
	event.Meta = eventstream.TurnMeta{
		StartedAt:   job.StartedAt.UTC(),
		CompletedAt: job.StartedAt.Add(job.Duration).UTC(),
		DurationMs:  job.Duration.Milliseconds(),
		Frames:      job.Frames,
	}
	event.Messages = eventstream.MessagesFrom(job.Turn)
	return event
}
