package kafka

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher decouples event publication from request handling. Events are
// queued to a bounded buffer and written by a background worker; a full
// buffer drops the event with a warning rather than stalling the caller.
// Lifecycle notifications are best-effort and never roll back the state
// change they describe.
type Dispatcher struct {
	publisher Publisher
	logger    *zap.Logger
	queue     chan queuedEvent
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type queuedEvent struct {
	eventType string
	subject   string
	payload   interface{}
}

const publishTimeout = 5 * time.Second

func NewDispatcher(publisher Publisher, bufferSize int, logger *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		publisher: publisher,
		logger:    logger,
		queue:     make(chan queuedEvent, bufferSize),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Dispatch enqueues an event without blocking the caller.
func (d *Dispatcher) Dispatch(eventType, subject string, payload interface{}) {
	select {
	case d.queue <- queuedEvent{eventType: eventType, subject: subject, payload: payload}:
	default:
		d.logger.Warn("Event buffer full, dropping event",
			zap.String("type", eventType),
			zap.String("subject", subject))
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		if err := d.publisher.Publish(ctx, ev.eventType, ev.subject, ev.payload); err != nil {
			d.logger.Error("Failed to publish event",
				zap.String("type", ev.eventType),
				zap.String("subject", ev.subject),
				zap.Error(err))
		}
		cancel()
	}
}

// Close drains the queue and stops the worker.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
