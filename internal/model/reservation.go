package model

import "time"

// Reservation records one booked time interval on one room, owned by
// one user. The interval is half-open `[StartAt, EndAt)`; the engine
// guarantees that for a fixed room no two stored intervals overlap.
// Reservations created together as a weekly series share a
// RecurringID; standalone reservations carry a null RecurringID.
//
// Fields:
//  ID          – primary key identifier, store assigned.
//  RoomID      – room being reserved.
//  UserID      – owner; set at creation and never changed.
//  Title       – free-text label.
//  StartAt     – interval start (UTC, inclusive).
//  EndAt       – interval end (UTC, exclusive); strictly after StartAt.
//  RecurringID – group identifier for a weekly series (nullable).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Reservation struct {
	ID          uint64    // reservations.id
	RoomID      uint64    // reservations.room_id
	UserID      uint64    // reservations.user_id
	Title       string    // reservations.title
	StartAt     time.Time // reservations.start_at
	EndAt       time.Time // reservations.end_at
	RecurringID *string   // reservations.recurring_id (nullable)
	CreatedAt   time.Time // reservations.created_at
	UpdatedAt   time.Time // reservations.updated_at
}
