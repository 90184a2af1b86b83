// Package service implements the reservation scheduling engine: time
// range validation, conflict detection, the ownership/role gate and the
// reservation lifecycle (single create, weekly recurring series, update
// and delete). It talks to storage through small interfaces so the
// engine can be exercised without a database.
package service

import (
	"errors"
	"fmt"
)

// ErrInvalidTimeFormat is returned when a start or end value cannot be
// parsed as a point in time. No store access is attempted.
var ErrInvalidTimeFormat = errors.New("invalid date format")

// ErrInvalidRange is returned when the end of an interval is not
// strictly after its start. Zero-length intervals are invalid.
var ErrInvalidRange = errors.New("endAt must be after startAt")

// ErrRoomConflict is returned when a create or update would overlap an
// existing reservation on the same room. Nothing is written.
var ErrRoomConflict = errors.New("room is already reserved in that time slot")

// ErrRoomNotFound is returned when the referenced room does not exist.
var ErrRoomNotFound = errors.New("room not found")

// ErrNotFound is returned when the referenced reservation id does not
// exist.
var ErrNotFound = errors.New("reservation not found")

// ErrForbidden is returned when the acting principal may not mutate the
// target reservation. It is produced by the update path only; the
// delete paths degrade to a zero-row no-op instead.
var ErrForbidden = errors.New("not allowed")

// RecurringConflictError reports that one occurrence of a recurring
// request would overlap an existing reservation. Week is the 1-based
// occurrence index; when it is raised, zero rows have been written.
type RecurringConflictError struct {
	Week int
}

func (e *RecurringConflictError) Error() string {
	return fmt.Sprintf("recurring conflict at week %d", e.Week)
}
