package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
	"github.com/iliyamo/meeting-room-reservation/internal/repository"
)

// ReservationStore is the persistence surface the engine needs. It is
// implemented by repository.ReservationRepo; tests substitute an
// in-memory fake.
type ReservationStore interface {
	FindConflicting(ctx context.Context, roomID uint64, start, end time.Time, excludeID uint64) (*repository.ConflictSummary, error)
	Create(ctx context.Context, res *model.Reservation) error
	CreateSeries(ctx context.Context, rows []model.Reservation) error
	GetByID(ctx context.Context, id uint64) (model.Reservation, error)
	ListAllOrderedByStart(ctx context.Context) ([]model.Reservation, error)
	Update(ctx context.Context, res model.Reservation) (model.Reservation, error)
	DeleteByID(ctx context.Context, id uint64) (int64, error)
	DeleteByIDForUser(ctx context.Context, id, userID uint64) (int64, error)
	DeleteSeries(ctx context.Context, recurringID string, ownerID *uint64) (int64, error)
}

// RoomDirectory supplies room existence; the engine needs nothing else
// from the room registry.
type RoomDirectory interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

// ReservationService orchestrates the reservation lifecycle. It holds
// no mutable state of its own; all coordination between concurrent
// requests is delegated to the store.
type ReservationService struct {
	store ReservationStore
	rooms RoomDirectory
}

// NewReservationService constructs the engine and panics on a nil
// dependency.
func NewReservationService(store ReservationStore, rooms RoomDirectory) *ReservationService {
	if store == nil || rooms == nil {
		panic("nil dependency passed to NewReservationService")
	}
	return &ReservationService{store: store, rooms: rooms}
}

// CreateInput carries the caller-supplied fields of a create request.
// StartAt and EndAt are the raw wire strings; parsing and validation
// happen inside the engine so no reservation can bypass them.
type CreateInput struct {
	RoomID  uint64
	Title   string
	StartAt string
	EndAt   string
}

// SeriesResult reports a committed recurring series: the fresh group
// identifier shared by all rows and the number of occurrences written.
type SeriesResult struct {
	RecurringID string
	Created     int
}

// CreateSingle books one standalone reservation owned by the actor.
// Order of checks: time range, room existence, conflict, insert. The
// conflict check and the insert are separate store operations; see the
// package notes on the accepted race window.
func (s *ReservationService) CreateSingle(ctx context.Context, actor Principal, in CreateInput) (model.Reservation, error) {
	rng, err := ParseRange(in.StartAt, in.EndAt)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := s.roomMustExist(ctx, in.RoomID); err != nil {
		return model.Reservation{}, err
	}
	clash, err := s.store.FindConflicting(ctx, in.RoomID, rng.Start, rng.End, 0)
	if err != nil {
		return model.Reservation{}, err
	}
	if clash != nil {
		return model.Reservation{}, ErrRoomConflict
	}
	res := model.Reservation{
		RoomID:  in.RoomID,
		UserID:  actor.UserID,
		Title:   in.Title,
		StartAt: rng.Start,
		EndAt:   rng.End,
	}
	if err := s.store.Create(ctx, &res); err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

// CreateSeries books repeatWeeks weekly occurrences of the base
// interval, each shifted by 7*i calendar days. It runs two passes: a
// pre-check of every occurrence against the stored schedule (no sibling
// occurrence can collide with another by construction, since each is a
// week apart and shorter than a week), then one atomic insert of all
// rows under a fresh recurring id. If any occurrence conflicts in
// either pass the request fails with RecurringConflictError carrying
// the 1-based week index, and zero rows remain written.
func (s *ReservationService) CreateSeries(ctx context.Context, actor Principal, in CreateInput, repeatWeeks int) (SeriesResult, error) {
	if repeatWeeks < 1 {
		repeatWeeks = 1
	}
	base, err := ParseRange(in.StartAt, in.EndAt)
	if err != nil {
		return SeriesResult{}, err
	}
	if err := s.roomMustExist(ctx, in.RoomID); err != nil {
		return SeriesResult{}, err
	}
	// Pre-check pass: every occurrence is an independent interval and is
	// checked individually before anything is created.
	for i := 0; i < repeatWeeks; i++ {
		slot := base.ShiftWeeks(i)
		clash, err := s.store.FindConflicting(ctx, in.RoomID, slot.Start, slot.End, 0)
		if err != nil {
			return SeriesResult{}, err
		}
		if clash != nil {
			return SeriesResult{}, &RecurringConflictError{Week: i + 1}
		}
	}
	// Commit pass: all rows share one fresh group identifier and are
	// written in a single transaction.
	recurringID := uuid.NewString()
	rows := make([]model.Reservation, 0, repeatWeeks)
	for i := 0; i < repeatWeeks; i++ {
		slot := base.ShiftWeeks(i)
		rid := recurringID
		rows = append(rows, model.Reservation{
			RoomID:      in.RoomID,
			UserID:      actor.UserID,
			Title:       in.Title,
			StartAt:     slot.Start,
			EndAt:       slot.End,
			RecurringID: &rid,
		})
	}
	if err := s.store.CreateSeries(ctx, rows); err != nil {
		var sc *repository.SeriesConflictError
		if errors.As(err, &sc) {
			return SeriesResult{}, &RecurringConflictError{Week: sc.Week}
		}
		return SeriesResult{}, err
	}
	return SeriesResult{RecurringID: recurringID, Created: repeatWeeks}, nil
}

// FindAll returns every reservation ascending by start time. Reads are
// not owner-scoped: any authenticated principal sees the full schedule.
func (s *ReservationService) FindAll(ctx context.Context) ([]model.Reservation, error) {
	return s.store.ListAllOrderedByStart(ctx)
}

// FindOne returns one reservation by id, or ErrNotFound.
func (s *ReservationService) FindOne(ctx context.Context, id uint64) (model.Reservation, error) {
	res, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrReservationNotFound) {
			return model.Reservation{}, ErrNotFound
		}
		return model.Reservation{}, err
	}
	return res, nil
}

// UpdateInput is a partial field set; nil pointers keep the prior
// value. Owner and recurring group are not part of the set and can
// never be changed through update.
type UpdateInput struct {
	RoomID  *uint64
	Title   *string
	StartAt *string
	EndAt   *string
}

// Update merges the given fields over the stored reservation, then
// re-runs the full validation chain: range check on the merged
// interval, then a conflict check that excludes the reservation's own
// id so an unchanged slot does not collide with itself. The actor must
// pass the ownership gate against the stored row's owner.
func (s *ReservationService) Update(ctx context.Context, actor Principal, id uint64, in UpdateInput) (model.Reservation, error) {
	existing, err := s.FindOne(ctx, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if !CanMutate(actor, existing.UserID) {
		return model.Reservation{}, ErrForbidden
	}

	merged := existing
	if in.RoomID != nil {
		merged.RoomID = *in.RoomID
	}
	if in.Title != nil {
		merged.Title = *in.Title
	}
	if in.StartAt != nil {
		t, err := ParseInstant(*in.StartAt)
		if err != nil {
			return model.Reservation{}, err
		}
		merged.StartAt = t
	}
	if in.EndAt != nil {
		t, err := ParseInstant(*in.EndAt)
		if err != nil {
			return model.Reservation{}, err
		}
		merged.EndAt = t
	}

	rng, err := NewTimeRange(merged.StartAt, merged.EndAt)
	if err != nil {
		return model.Reservation{}, err
	}
	if in.RoomID != nil && merged.RoomID != existing.RoomID {
		if err := s.roomMustExist(ctx, merged.RoomID); err != nil {
			return model.Reservation{}, err
		}
	}
	clash, err := s.store.FindConflicting(ctx, merged.RoomID, rng.Start, rng.End, id)
	if err != nil {
		return model.Reservation{}, err
	}
	if clash != nil {
		return model.Reservation{}, ErrRoomConflict
	}
	return s.store.Update(ctx, merged)
}

// Delete removes one reservation and reports the number of rows
// deleted. Administrators delete unconditionally by id; everyone else
// deletes through an owner filter, so a non-owning caller's request
// completes with a zero count and no error.
func (s *ReservationService) Delete(ctx context.Context, actor Principal, id uint64) (int64, error) {
	if actor.IsAdmin() {
		return s.store.DeleteByID(ctx, id)
	}
	return s.store.DeleteByIDForUser(ctx, id, actor.UserID)
}

// DeleteSeries removes a recurring group. Administrators remove every
// row carrying the identifier; everyone else only the rows they own.
// A partial deletion is allowed and is not an error.
func (s *ReservationService) DeleteSeries(ctx context.Context, actor Principal, recurringID string) (int64, error) {
	if actor.IsAdmin() {
		return s.store.DeleteSeries(ctx, recurringID, nil)
	}
	owner := actor.UserID
	return s.store.DeleteSeries(ctx, recurringID, &owner)
}

func (s *ReservationService) roomMustExist(ctx context.Context, roomID uint64) error {
	ok, err := s.rooms.Exists(ctx, roomID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrRoomNotFound
	}
	return nil
}
