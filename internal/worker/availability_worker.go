package worker

import (
	"context"
	"plate-rescue/internal/metrics"
	"plate-rescue/internal/queue"
	"plate-rescue/internal/service"
	"plate-rescue/pkg/logger"

	"go.uber.org/zap"
)

type AvailabilityWorker interface {
	// Start subscribes to the event queue and returns once the subscription is live.
	Start(ctx context.Context) error
	// Done is closed after the delivery channel drains.
	Done() <-chan struct{}
}

// AvailabilityWorkerImpl keeps the marketplace cache in step with committed stock changes.
type AvailabilityWorkerImpl struct {
	service service.PlateService
	queue   queue.EventQueue
	metrics *metrics.EngineMetrics
	done    chan struct{}
}

func NewAvailabilityWorker(service service.PlateService, queue queue.EventQueue, engineMetrics *metrics.EngineMetrics) AvailabilityWorker {
	return &AvailabilityWorkerImpl{
		service: service,
		queue:   queue,
		metrics: engineMetrics,
		done:    make(chan struct{}),
	}
}

func (w *AvailabilityWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.Subscribe(ctx)
	if err != nil {
		return err
	}

	go func() {
		defer close(w.done)
		for msg := range msgs {
			w.handle(ctx, msg)
		}
	}()
	return nil
}

func (w *AvailabilityWorkerImpl) Done() <-chan struct{} {
	return w.done
}

func (w *AvailabilityWorkerImpl) handle(ctx context.Context, msg queue.Delivery) {
	event := msg.Data
	if !event.ChangesStock() {
		w.metrics.IncEvent(string(event.Type), "skipped")
		msg.Ack()
		return
	}

	if err := w.service.Refresh(ctx, event.PlateID); err != nil {
		// cache or database hiccup; try again later
		logger.WithComponent("worker").Warn("failed to refresh plate availability",
			zap.String("event_id", event.EventID),
			zap.Int("plate_id", event.PlateID),
			zap.Error(err),
		)
		w.metrics.IncEvent(string(event.Type), "retry")
		msg.Nack(true)
		return
	}

	w.metrics.IncEvent(string(event.Type), "refreshed")
	msg.Ack()
}
