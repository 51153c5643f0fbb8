package queue

import (
	"context"
	"plate-rescue/internal/model"
)

type Delivery struct {
	Data *model.ReservationEvent
	Ack  func()
	Nack func(requeue bool)
}

type EventQueue interface {
	// Publish enqueues an event after its transaction has committed.
	Publish(ctx context.Context, event *model.ReservationEvent) error
	// Subscribe streams deliveries until ctx is done.
	Subscribe(ctx context.Context) (<-chan Delivery, error)
}

// MemoryEventQueue is a channel-backed EventQueue for single-process runs and tests.
type MemoryEventQueue struct {
	ch chan *model.ReservationEvent
}

func NewMemoryEventQueue(bufferSize int) EventQueue {
	return &MemoryEventQueue{
		ch: make(chan *model.ReservationEvent, bufferSize),
	}
}

func (q *MemoryEventQueue) Publish(ctx context.Context, event *model.ReservationEvent) error {
	select {
	case q.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryEventQueue) Subscribe(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-q.ch:
				if !ok {
					return
				}

				d := Delivery{
					Data: event,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if requeue {
							// requeue without blocking the consumer goroutine
							go func() {
								select {
								case q.ch <- event:
								case <-ctx.Done():
								}
							}()
						}
					},
				}
				select {
				case out <- d:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
