package model

import "time"

// Room is a bookable meeting room as stored in the `rooms` table.
// Reservations reference rooms by ID only; the reservation engine
// never needs more than existence and identity.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human readable room name.
//  Location  – optional free-text location (floor, building).
//  Capacity  – number of seats in the room.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type Room struct {
	ID        uint64    // rooms.id
	Name      string    // rooms.name
	Location  *string   // rooms.location (nullable)
	Capacity  uint32    // rooms.capacity
	CreatedAt time.Time // rooms.created_at
	UpdatedAt time.Time // rooms.updated_at
}
