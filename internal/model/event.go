package model

import "time"

type ReservationEventType string

const (
	EventReserved  ReservationEventType = "reserved"
	EventConfirmed ReservationEventType = "confirmed"
	EventDonated   ReservationEventType = "donated"
	EventClaimed   ReservationEventType = "claimed"
	EventCancelled ReservationEventType = "cancelled"
	EventPickedUp  ReservationEventType = "picked_up"
)

// ReservationEvent is published after an engine transaction commits.
type ReservationEvent struct {
	EventID       string               `json:"event_id"`
	Type          ReservationEventType `json:"type"`
	ReservationID int                  `json:"reservation_id"`
	PlateID       int                  `json:"plate_id"`
	ActorID       int                  `json:"actor_id"`
	Quantity      int                  `json:"qty"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

// ChangesStock reports whether the plate counter moved in this event.
func (e *ReservationEvent) ChangesStock() bool {
	return e.Type == EventConfirmed || e.Type == EventDonated
}
