package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
)

// ReservationRepo provides persistence for the 'reservations' table.
// All timestamp columns are stored in UTC (the connection is opened
// with loc=UTC and parseTime=true, so DATETIME scans into time.Time).
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle so callers can open transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// ConflictSummary identifies an existing reservation whose interval
// overlaps a candidate interval. Only the fields needed to report the
// collision are loaded.
type ConflictSummary struct {
	ID      uint64
	StartAt time.Time
	EndAt   time.Time
}

// reservationColumns is the select list shared by every read path.
const reservationColumns = `id, room_id, user_id, title, start_at, end_at, recurring_id, created_at, updated_at`

// FindConflicting returns the first stored reservation on the room whose
// half-open interval overlaps [start, end), or nil when the slot is free.
// The predicate is strict: touching intervals do not conflict. When
// excludeID is non-zero that reservation is removed from the candidate
// set, which lets an update avoid conflicting with itself.
func (r *ReservationRepo) FindConflicting(ctx context.Context, roomID uint64, start, end time.Time, excludeID uint64) (*ConflictSummary, error) {
	q := `SELECT id, start_at, end_at FROM reservations
	      WHERE room_id = ? AND start_at < ? AND end_at > ?`
	args := []interface{}{roomID, end, start}
	if excludeID != 0 {
		q += ` AND id <> ?`
		args = append(args, excludeID)
	}
	q += ` LIMIT 1`
	var c ConflictSummary
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&c.ID, &c.StartAt, &c.EndAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts one reservation row and populates the generated ID and
// timestamps on the provided record.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations (room_id, user_id, title, start_at, end_at, recurring_id)
	           VALUES (?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, res.RoomID, res.UserID, res.Title, res.StartAt, res.EndAt, res.RecurringID)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	stored, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*res = stored
	return nil
}

// CreateSeries inserts all rows of a recurring series as a single atomic
// unit: either every occurrence becomes durable or none does. Inside the
// transaction each occurrence's slot is re-checked against the stored
// schedule, narrowing the window between the service's pre-check pass
// and the commit. A conflict discovered here rolls the whole series back
// and surfaces the 1-based occurrence index through SeriesConflictError.
func (r *ReservationRepo) CreateSeries(ctx context.Context, rows []model.Reservation) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const conflictQ = `SELECT id FROM reservations
	                   WHERE room_id = ? AND start_at < ? AND end_at > ? LIMIT 1`
	const insertQ = `INSERT INTO reservations (room_id, user_id, title, start_at, end_at, recurring_id)
	                 VALUES (?, ?, ?, ?, ?, ?)`
	for i := range rows {
		row := &rows[i]
		var clash uint64
		err := tx.QueryRowContext(ctx, conflictQ, row.RoomID, row.EndAt, row.StartAt).Scan(&clash)
		if err == nil {
			return &SeriesConflictError{Week: i + 1}
		}
		if err != sql.ErrNoRows {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertQ, row.RoomID, row.UserID, row.Title, row.StartAt, row.EndAt, row.RecurringID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID fetches one reservation; ErrReservationNotFound when absent.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ? LIMIT 1`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return model.Reservation{}, ErrReservationNotFound
	}
	return res, err
}

// ListAllOrderedByStart returns every reservation ascending by start
// time. The secondary id ordering keeps the output deterministic when
// two reservations on different rooms share a start instant.
func (r *ReservationRepo) ListAllOrderedByStart(ctx context.Context) ([]model.Reservation, error) {
	const q = `SELECT ` + reservationColumns + ` FROM reservations ORDER BY start_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		var res model.Reservation
		var recurring sql.NullString
		if err := rows.Scan(&res.ID, &res.RoomID, &res.UserID, &res.Title,
			&res.StartAt, &res.EndAt, &recurring, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		if recurring.Valid {
			rid := recurring.String
			res.RecurringID = &rid
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update persists the mutable fields of a reservation (room, title and
// interval) and returns the stored row. Owner and recurring group are
// deliberately not part of the statement.
func (r *ReservationRepo) Update(ctx context.Context, res model.Reservation) (model.Reservation, error) {
	const q = `UPDATE reservations SET room_id=?, title=?, start_at=?, end_at=? WHERE id=?`
	if _, err := r.db.ExecContext(ctx, q, res.RoomID, res.Title, res.StartAt, res.EndAt, res.ID); err != nil {
		return model.Reservation{}, err
	}
	return r.GetByID(ctx, res.ID)
}

// DeleteByID removes one reservation unconditionally and reports the
// number of rows deleted. Used for the administrator delete path.
func (r *ReservationRepo) DeleteByID(ctx context.Context, id uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reservations WHERE id=?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByIDForUser removes one reservation only if it is owned by the
// given user. A non-owning caller gets a zero count, not an error.
func (r *ReservationRepo) DeleteByIDForUser(ctx context.Context, id, userID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM reservations WHERE id=? AND user_id=?", id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteSeries removes every reservation in a recurring group. When
// ownerID is non-nil only rows owned by that user are removed, so a
// non-admin caller can trim their own occurrences while rows owned by
// others survive.
func (r *ReservationRepo) DeleteSeries(ctx context.Context, recurringID string, ownerID *uint64) (int64, error) {
	q := "DELETE FROM reservations WHERE recurring_id=?"
	args := []interface{}{recurringID}
	if ownerID != nil {
		q += " AND user_id=?"
		args = append(args, *ownerID)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanReservation(row *sql.Row) (model.Reservation, error) {
	var res model.Reservation
	var recurring sql.NullString
	err := row.Scan(&res.ID, &res.RoomID, &res.UserID, &res.Title,
		&res.StartAt, &res.EndAt, &recurring, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	if recurring.Valid {
		rid := recurring.String
		res.RecurringID = &rid
	}
	return res, nil
}
