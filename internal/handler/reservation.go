package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
	"github.com/iliyamo/meeting-room-reservation/internal/queue"
	"github.com/iliyamo/meeting-room-reservation/internal/service"
)

// ReservationHandler exposes the reservation lifecycle over HTTP. All
// methods assume JWT authentication and role validation have already
// been performed by middleware; the acting principal is read from the
// request context and handed to the service explicitly.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

// NewReservationHandler constructs a ReservationHandler and panics on a
// nil service.
func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: svc}
}

// ----- DTOs -----

// Field names are the external contract shared with the web client.

type createReservationReq struct {
	RoomID      uint64 `json:"roomId"`
	Title       string `json:"title"`
	StartAt     string `json:"startAt"`
	EndAt       string `json:"endAt"`
	RepeatWeeks int    `json:"repeatWeeks,omitempty"`
}

type updateReservationReq struct {
	RoomID  *uint64 `json:"roomId"`
	Title   *string `json:"title"`
	StartAt *string `json:"startAt"`
	EndAt   *string `json:"endAt"`
}

type reservationResp struct {
	ID          uint64  `json:"id"`
	Title       string  `json:"title"`
	StartAt     string  `json:"startAt"`
	EndAt       string  `json:"endAt"`
	RoomID      uint64  `json:"roomId"`
	UserID      uint64  `json:"userId"`
	RecurringID *string `json:"recurringId"`
}

type seriesResp struct {
	RecurringID string `json:"recurringId"`
	Created     int    `json:"created"`
}

func toReservationResp(r model.Reservation) reservationResp {
	return reservationResp{
		ID:          r.ID,
		Title:       r.Title,
		StartAt:     r.StartAt.UTC().Format(time.RFC3339),
		EndAt:       r.EndAt.UTC().Format(time.RFC3339),
		RoomID:      r.RoomID,
		UserID:      r.UserID,
		RecurringID: r.RecurringID,
	}
}

// Create handles POST /v1/reservations. A request with repeatWeeks > 0
// books a weekly recurring series atomically; otherwise a single
// reservation is created. On success a reservation.booked event is
// published; broker failures never fail the booking.
func (h *ReservationHandler) Create(c echo.Context) error {
	actor, err := getPrincipal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	if req.RoomID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "roomId is required"})
	}
	in := service.CreateInput{
		RoomID:  req.RoomID,
		Title:   strings.TrimSpace(req.Title),
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
	}

	ctx := c.Request().Context()

	if req.RepeatWeeks > 0 {
		result, err := h.Reservations.CreateSeries(ctx, actor, in, req.RepeatWeeks)
		if err != nil {
			return reservationError(c, err)
		}
		h.publishBooked(actor, in, result.RecurringID, result.Created, nil)
		return c.JSON(http.StatusCreated, seriesResp{
			RecurringID: result.RecurringID,
			Created:     result.Created,
		})
	}

	res, err := h.Reservations.CreateSingle(ctx, actor, in)
	if err != nil {
		return reservationError(c, err)
	}
	h.publishBooked(actor, in, "", 1, []uint64{res.ID})
	return c.JSON(http.StatusCreated, toReservationResp(res))
}

// List handles GET /v1/reservations. Reads are open to every
// authenticated principal; ordering is ascending by start time.
func (h *ReservationHandler) List(c echo.Context) error {
	all, err := h.Reservations.FindAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]reservationResp, 0, len(all))
	for _, r := range all {
		out = append(out, toReservationResp(r))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /v1/reservations/:id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Reservations.FindOne(c.Request().Context(), id)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// Update handles PATCH /v1/reservations/:id. Unspecified fields keep
// their prior values; owner and recurring group can never change.
func (h *ReservationHandler) Update(c echo.Context) error {
	actor, err := getPrincipal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req updateReservationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title must not be empty"})
	}
	res, err := h.Reservations.Update(c.Request().Context(), actor, id, service.UpdateInput{
		RoomID:  req.RoomID,
		Title:   req.Title,
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
	})
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// Delete handles DELETE /v1/reservations/:id. A non-owning, non-admin
// caller's delete completes without error but reports zero deleted
// rows.
func (h *ReservationHandler) Delete(c echo.Context) error {
	actor, err := getPrincipal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	n, err := h.Reservations.Delete(c.Request().Context(), actor, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// DeleteSeries handles DELETE /v1/reservations/series/:recurringId.
// Non-admin callers only remove the rows they own; a partial deletion
// is allowed.
func (h *ReservationHandler) DeleteSeries(c echo.Context) error {
	actor, err := getPrincipal(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	recurringID := strings.TrimSpace(c.Param("recurringId"))
	if recurringID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid recurring id"})
	}
	n, err := h.Reservations.DeleteSeries(c.Request().Context(), actor, recurringID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": n})
}

// publishBooked fires the reservation.booked event in the background.
// The request has already succeeded at this point, so broker errors are
// logged by the publisher and otherwise ignored.
func (h *ReservationHandler) publishBooked(actor service.Principal, in service.CreateInput, recurringID string, created int, ids []uint64) {
	ev := queue.ReservationBookedEvent{
		ReservationIDs: ids,
		RoomID:         in.RoomID,
		UserID:         actor.UserID,
		Title:          in.Title,
		StartAt:        in.StartAt,
		EndAt:          in.EndAt,
		RecurringID:    recurringID,
		Created:        created,
		BookedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		_ = queue.PublishReservationBooked(context.Background(), ev)
	}()
}

// reservationError maps service failures onto HTTP responses. Every
// named failure kind surfaces with a specific status; anything else is
// an opaque 500.
func reservationError(c echo.Context, err error) error {
	var rc *service.RecurringConflictError
	switch {
	case errors.Is(err, service.ErrInvalidTimeFormat):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date format"})
	case errors.Is(err, service.ErrInvalidRange):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "endAt must be after startAt"})
	case errors.Is(err, service.ErrRoomNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "room does not exist"})
	case errors.Is(err, service.ErrRoomConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "room is already reserved in that time slot"})
	case errors.As(err, &rc):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "recurring conflict",
			"week":  rc.Week,
		})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not allowed"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}
