// Package queue defines message payloads exchanged over the message
// broker and the background consumer that processes them.
package queue

// ReservationBookedEvent is published after a reservation (or a whole
// recurring series) is durably stored. It carries enough information
// for downstream consumers to log or notify without querying the
// primary database. For a series, ReservationIDs lists every created
// occurrence and RecurringID is set; for a standalone booking it holds
// the single id and RecurringID is empty.
type ReservationBookedEvent struct {
	ReservationIDs []uint64 `json:"reservation_ids"`
	RoomID         uint64   `json:"room_id"`
	UserID         uint64   `json:"user_id"`
	Title          string   `json:"title"`
	StartAt        string   `json:"start_at"`
	EndAt          string   `json:"end_at"`
	RecurringID    string   `json:"recurring_id,omitempty"`
	Created        int      `json:"created"`
	BookedAt       string   `json:"booked_at"`
}
