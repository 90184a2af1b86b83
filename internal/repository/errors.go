// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to distinguish between different failure
// scenarios. For example, ErrRoomNotFound indicates that a referenced
// room does not exist, while ErrEmailExists signals a duplicate
// registration attempt.
package repository

import (
	"errors"
	"fmt"
)

// ErrEmailExists is returned when registering with an email address
// that is already taken. Handlers should translate this into an
// HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrRoomNotFound is returned when a room lookup by id matches no row.
// Handlers should translate this into an HTTP 404 response.
var ErrRoomNotFound = errors.New("room not found")

// ErrReservationNotFound is returned when a reservation lookup by id
// matches no row. Handlers should translate this into an HTTP 404
// response.
var ErrReservationNotFound = errors.New("reservation not found")

// SeriesConflictError is returned by CreateSeries when the in-transaction
// re-check finds that an occurrence's slot was taken between the
// service's pre-check pass and the commit. Week is the 1-based index of
// the occurrence that collided; the transaction is rolled back in full.
type SeriesConflictError struct {
	Week int
}

func (e *SeriesConflictError) Error() string {
	return fmt.Sprintf("recurring conflict at week %d", e.Week)
}
