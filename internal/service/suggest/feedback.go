package suggest

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// phraseWriter is the write half of the phrase-log contract.
type phraseWriter interface {
	UpsertUsage(ctx context.Context, phrase string) error
}

const recordTimeout = 5 * time.Second

// Recorder is the feedback loop: confirmed search selections are handed
// off to a worker goroutine that increments the phrase's frequency in the
// log. The contract is best-effort with no backpressure — a full queue
// drops the event, upsert failures are logged and swallowed, nothing is
// retried. Navigation after a search selection must never block on this
// path.
type Recorder struct {
	log     *slog.Logger
	phrases phraseWriter

	queue chan string
	wg    sync.WaitGroup
	once  sync.Once
}

// NewRecorder starts the worker goroutine. Call Close on shutdown.
func NewRecorder(logger *slog.Logger, phrases phraseWriter, queueSize int) *Recorder {
	r := &Recorder{
		log:     logger.With("component", "phrase_feedback"),
		phrases: phrases,
		queue:   make(chan string, queueSize),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Record enqueues a confirmed selection. It never blocks: when the queue
// is full the event is dropped with a log line.
func (r *Recorder) Record(phrase string) {
	select {
	case r.queue <- phrase:
	default:
		r.log.Warn("feedback queue full, dropping selection",
			slog.String("phrase", phrase),
		)
	}
}

// Close stops accepting events, drains the queue, and waits for the
// worker to finish. Safe to call more than once.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.queue)
	})
	r.wg.Wait()
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for phrase := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := r.phrases.UpsertUsage(ctx, phrase); err != nil {
			r.log.ErrorContext(ctx, "phrase usage upsert failed",
				slog.String("phrase", phrase),
				slog.String("error", err.Error()),
			)
		}
		cancel()
	}
}
