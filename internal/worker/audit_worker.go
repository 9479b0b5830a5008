package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/etutor-gateway/internal/events"
)

// AuditWorker forwards audited events to a Publisher from its own goroutine.
// Enqueueing never blocks: when the buffer is full the event is dropped.
type AuditWorker struct {
	publisher events.Publisher
	queue     chan events.Event
	timeout   time.Duration
	logger    *zap.Logger
}

// NewAuditWorker builds a worker with a bounded buffer.
func NewAuditWorker(publisher events.Publisher, bufferSize int, publishTimeout time.Duration, logger *zap.Logger) *AuditWorker {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if publishTimeout <= 0 {
		publishTimeout = 5 * time.Second
	}
	return &AuditWorker{
		publisher: publisher,
		queue:     make(chan events.Event, bufferSize),
		timeout:   publishTimeout,
		logger:    logger,
	}
}

// Register subscribes the worker to every audited event type.
func (w *AuditWorker) Register(dispatcher events.Dispatcher) {
	for _, eventType := range events.AuditedTypes {
		dispatcher.Subscribe(eventType, w.Enqueue)
	}
}

// Enqueue buffers the event for publishing.
func (w *AuditWorker) Enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
	default:
		w.logger.Warn("audit buffer full, dropping event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)))
	}
	return nil
}

// Run publishes events until ctx is cancelled, then drains what is already buffered.
func (w *AuditWorker) Run(ctx context.Context) {
	for {
		select {
		case event := <-w.queue:
			w.publish(event)
		case <-ctx.Done():
			w.drain()
			return
		}
	}
}

func (w *AuditWorker) drain() {
	for {
		select {
		case event := <-w.queue:
			w.publish(event)
		default:
			return
		}
	}
}

func (w *AuditWorker) publish(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	if err := w.publisher.Publish(ctx, event); err != nil {
		w.logger.Error("audit publish failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
	}
}
