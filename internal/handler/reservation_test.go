package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
	"github.com/iliyamo/meeting-room-reservation/internal/repository"
	"github.com/iliyamo/meeting-room-reservation/internal/service"
)

// memStore is a minimal in-memory ReservationStore for handler tests.
type memStore struct {
	nextID uint64
	rows   []model.Reservation
}

func (m *memStore) FindConflicting(_ context.Context, roomID uint64, start, end time.Time, excludeID uint64) (*repository.ConflictSummary, error) {
	for _, r := range m.rows {
		if r.RoomID != roomID || r.ID == excludeID {
			continue
		}
		if r.StartAt.Before(end) && start.Before(r.EndAt) {
			return &repository.ConflictSummary{ID: r.ID, StartAt: r.StartAt, EndAt: r.EndAt}, nil
		}
	}
	return nil, nil
}

func (m *memStore) Create(_ context.Context, res *model.Reservation) error {
	m.nextID++
	res.ID = m.nextID
	m.rows = append(m.rows, *res)
	return nil
}

func (m *memStore) CreateSeries(_ context.Context, rows []model.Reservation) error {
	for _, r := range rows {
		m.nextID++
		r.ID = m.nextID
		m.rows = append(m.rows, r)
	}
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (model.Reservation, error) {
	for _, r := range m.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Reservation{}, repository.ErrReservationNotFound
}

func (m *memStore) ListAllOrderedByStart(_ context.Context) ([]model.Reservation, error) {
	return m.rows, nil
}

func (m *memStore) Update(_ context.Context, res model.Reservation) (model.Reservation, error) {
	for i, r := range m.rows {
		if r.ID == res.ID {
			res.UserID = r.UserID
			res.RecurringID = r.RecurringID
			m.rows[i] = res
			return res, nil
		}
	}
	return model.Reservation{}, repository.ErrReservationNotFound
}

func (m *memStore) DeleteByID(_ context.Context, id uint64) (int64, error) {
	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memStore) DeleteByIDForUser(_ context.Context, id, userID uint64) (int64, error) {
	for i, r := range m.rows {
		if r.ID == id && r.UserID == userID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memStore) DeleteSeries(_ context.Context, recurringID string, ownerID *uint64) (int64, error) {
	var kept []model.Reservation
	var n int64
	for _, r := range m.rows {
		if r.RecurringID != nil && *r.RecurringID == recurringID && (ownerID == nil || r.UserID == *ownerID) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	m.rows = kept
	return n, nil
}

type allRooms struct{}

func (allRooms) Exists(context.Context, uint64) (bool, error) { return true, nil }

func newTestHandler() (*ReservationHandler, *memStore) {
	store := &memStore{}
	return NewReservationHandler(service.NewReservationService(store, allRooms{})), store
}

// call builds an authenticated request context the way the JWT
// middleware would and returns the recorder after the handler ran.
func call(t *testing.T, h echo.HandlerFunc, method, path, body string, userID uint64, role string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(userID))
	c.Set("role", role)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	require.NoError(t, h(c))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestReservationCreate(t *testing.T) {
	t.Run("single reservation returns 201 with the stored row", func(t *testing.T) {
		h, _ := newTestHandler()

		rec := call(t, h.Create, http.MethodPost, "/v1/reservations",
			`{"roomId":1,"title":"standup","startAt":"2026-01-07T10:00:00Z","endAt":"2026-01-07T10:30:00Z"}`,
			1, model.RoleUser)

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "standup", body["title"])
		assert.Equal(t, "2026-01-07T10:00:00Z", body["startAt"])
		assert.Equal(t, float64(1), body["userId"])
		assert.Nil(t, body["recurringId"])
	})

	t.Run("recurring request returns the group summary", func(t *testing.T) {
		h, store := newTestHandler()

		rec := call(t, h.Create, http.MethodPost, "/v1/reservations",
			`{"roomId":1,"title":"weekly","startAt":"2026-01-07T10:00:00Z","endAt":"2026-01-07T11:00:00Z","repeatWeeks":3}`,
			1, model.RoleUser)

		require.Equal(t, http.StatusCreated, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, float64(3), body["created"])
		assert.NotEmpty(t, body["recurringId"])
		assert.Len(t, store.rows, 3)
	})

	t.Run("missing title is a 400", func(t *testing.T) {
		h, _ := newTestHandler()

		rec := call(t, h.Create, http.MethodPost, "/v1/reservations",
			`{"roomId":1,"title":"  ","startAt":"2026-01-07T10:00:00Z","endAt":"2026-01-07T11:00:00Z"}`,
			1, model.RoleUser)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad timestamp is a 400", func(t *testing.T) {
		h, _ := newTestHandler()

		rec := call(t, h.Create, http.MethodPost, "/v1/reservations",
			`{"roomId":1,"title":"x","startAt":"garbage","endAt":"2026-01-07T11:00:00Z"}`,
			1, model.RoleUser)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "invalid date format", decode(t, rec)["error"])
	})

	t.Run("inverted range is a 400", func(t *testing.T) {
		h, _ := newTestHandler()

		rec := call(t, h.Create, http.MethodPost, "/v1/reservations",
			`{"roomId":1,"title":"x","startAt":"2026-01-07T11:00:00Z","endAt":"2026-01-07T10:00:00Z"}`,
			1, model.RoleUser)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "endAt must be after startAt", decode(t, rec)["error"])
	})

	t.Run("overlapping slot is a 409", func(t *testing.T) {
		h, _ := newTestHandler()

		first := call(t, h.Create, http.MethodPost, "/v1/reservations",
			`{"roomId":1,"title":"first","startAt":"2026-01-07T10:00:00Z","endAt":"2026-01-07T11:00:00Z"}`,
			1, model.RoleUser)
		require.Equal(t, http.StatusCreated, first.Code)

		rec := call(t, h.Create, http.MethodPost, "/v1/reservations",
			`{"roomId":1,"title":"second","startAt":"2026-01-07T10:30:00Z","endAt":"2026-01-07T11:30:00Z"}`,
			2, model.RoleUser)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("recurring conflict reports the week index", func(t *testing.T) {
		h, _ := newTestHandler()

		blocker := call(t, h.Create, http.MethodPost, "/v1/reservations",
			`{"roomId":1,"title":"blocker","startAt":"2026-01-14T10:00:00Z","endAt":"2026-01-14T11:00:00Z"}`,
			2, model.RoleUser)
		require.Equal(t, http.StatusCreated, blocker.Code)

		rec := call(t, h.Create, http.MethodPost, "/v1/reservations",
			`{"roomId":1,"title":"weekly","startAt":"2026-01-07T10:00:00Z","endAt":"2026-01-07T11:00:00Z","repeatWeeks":3}`,
			1, model.RoleUser)

		assert.Equal(t, http.StatusConflict, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "recurring conflict", body["error"])
		assert.Equal(t, float64(2), body["week"])
	})
}

func TestReservationGet(t *testing.T) {
	h, _ := newTestHandler()

	created := call(t, h.Create, http.MethodPost, "/v1/reservations",
		`{"roomId":1,"title":"standup","startAt":"2026-01-07T10:00:00Z","endAt":"2026-01-07T10:30:00Z"}`,
		1, model.RoleUser)
	require.Equal(t, http.StatusCreated, created.Code)

	rec := call(t, h.Get, http.MethodGet, "/v1/reservations/1", "", 1, model.RoleUser, "id", "1")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, h.Get, http.MethodGet, "/v1/reservations/99", "", 1, model.RoleUser, "id", "99")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = call(t, h.Get, http.MethodGet, "/v1/reservations/abc", "", 1, model.RoleUser, "id", "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReservationUpdate(t *testing.T) {
	seed := func(t *testing.T) *ReservationHandler {
		t.Helper()
		h, _ := newTestHandler()
		rec := call(t, h.Create, http.MethodPost, "/v1/reservations",
			`{"roomId":1,"title":"standup","startAt":"2026-01-07T10:00:00Z","endAt":"2026-01-07T11:00:00Z"}`,
			1, model.RoleUser)
		require.Equal(t, http.StatusCreated, rec.Code)
		return h
	}

	t.Run("owner renames", func(t *testing.T) {
		h := seed(t)
		rec := call(t, h.Update, http.MethodPatch, "/v1/reservations/1",
			`{"title":"retro"}`, 1, model.RoleUser, "id", "1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "retro", decode(t, rec)["title"])
	})

	t.Run("non-owner gets 403", func(t *testing.T) {
		h := seed(t)
		rec := call(t, h.Update, http.MethodPatch, "/v1/reservations/1",
			`{"title":"hijack"}`, 2, model.RoleUser, "id", "1")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin updates a foreign row", func(t *testing.T) {
		h := seed(t)
		rec := call(t, h.Update, http.MethodPatch, "/v1/reservations/1",
			`{"title":"moved"}`, 9, model.RoleAdmin, "id", "1")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown id gets 404", func(t *testing.T) {
		h := seed(t)
		rec := call(t, h.Update, http.MethodPatch, "/v1/reservations/99",
			`{"title":"x"}`, 1, model.RoleUser, "id", "99")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("empty title gets 400", func(t *testing.T) {
		h := seed(t)
		rec := call(t, h.Update, http.MethodPatch, "/v1/reservations/1",
			`{"title":""}`, 1, model.RoleUser, "id", "1")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReservationDelete(t *testing.T) {
	seed := func(t *testing.T) (*ReservationHandler, *memStore) {
		t.Helper()
		h, store := newTestHandler()
		rec := call(t, h.Create, http.MethodPost, "/v1/reservations",
			`{"roomId":1,"title":"standup","startAt":"2026-01-07T10:00:00Z","endAt":"2026-01-07T11:00:00Z"}`,
			1, model.RoleUser)
		require.Equal(t, http.StatusCreated, rec.Code)
		return h, store
	}

	t.Run("owner delete reports one row", func(t *testing.T) {
		h, store := seed(t)
		rec := call(t, h.Delete, http.MethodDelete, "/v1/reservations/1", "", 1, model.RoleUser, "id", "1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), decode(t, rec)["deleted"])
		assert.Empty(t, store.rows)
	})

	t.Run("foreign delete is a silent zero", func(t *testing.T) {
		h, store := seed(t)
		rec := call(t, h.Delete, http.MethodDelete, "/v1/reservations/1", "", 2, model.RoleUser, "id", "1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(0), decode(t, rec)["deleted"])
		assert.Len(t, store.rows, 1)
	})

	t.Run("admin delete is unconditional", func(t *testing.T) {
		h, store := seed(t)
		rec := call(t, h.Delete, http.MethodDelete, "/v1/reservations/1", "", 9, model.RoleAdmin, "id", "1")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(1), decode(t, rec)["deleted"])
		assert.Empty(t, store.rows)
	})
}

func TestReservationDeleteSeries(t *testing.T) {
	h, store := newTestHandler()

	rec := call(t, h.Create, http.MethodPost, "/v1/reservations",
		`{"roomId":1,"title":"weekly","startAt":"2026-01-07T10:00:00Z","endAt":"2026-01-07T11:00:00Z","repeatWeeks":2}`,
		1, model.RoleUser)
	require.Equal(t, http.StatusCreated, rec.Code)
	rid, _ := decode(t, rec)["recurringId"].(string)
	require.NotEmpty(t, rid)

	foreign := call(t, h.DeleteSeries, http.MethodDelete, "/v1/reservations/series/"+rid, "",
		2, model.RoleUser, "recurringId", rid)
	require.Equal(t, http.StatusOK, foreign.Code)
	assert.Equal(t, float64(0), decode(t, foreign)["deleted"])
	assert.Len(t, store.rows, 2)

	owner := call(t, h.DeleteSeries, http.MethodDelete, "/v1/reservations/series/"+rid, "",
		1, model.RoleUser, "recurringId", rid)
	require.Equal(t, http.StatusOK, owner.Code)
	assert.Equal(t, float64(2), decode(t, owner)["deleted"])
	assert.Empty(t, store.rows)
}
