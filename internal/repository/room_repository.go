package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
)

// RoomRepo provides CRUD operations for meeting rooms. The reservation
// engine itself only depends on Exists; the remaining methods back the
// room administration endpoints.
type RoomRepo struct{ DB *sql.DB }

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{DB: db} }

// Create inserts a room and returns the stored row.
func (r *RoomRepo) Create(ctx context.Context, name string, location *string, capacity uint32) (model.Room, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO rooms (name, location, capacity) VALUES (?,?,?)",
		name, location, capacity)
	if err != nil {
		return model.Room{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Room{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByID fetches one room; ErrRoomNotFound when the id is unknown.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	const q = `SELECT id, name, location, capacity, created_at, updated_at
	           FROM rooms WHERE id=? LIMIT 1`
	var room model.Room
	var loc sql.NullString
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&room.ID, &room.Name, &loc, &room.Capacity, &room.CreatedAt, &room.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Room{}, ErrRoomNotFound
	}
	if err != nil {
		return model.Room{}, err
	}
	if loc.Valid {
		l := loc.String
		room.Location = &l
	}
	return room, nil
}

// Exists reports whether a room with the given id is stored.
func (r *RoomRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM rooms WHERE id=? LIMIT 1", id).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListAll returns every room ordered by id ascending.
func (r *RoomRepo) ListAll(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT id, name, location, capacity, created_at, updated_at
	           FROM rooms ORDER BY id ASC`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rooms := make([]model.Room, 0)
	for rows.Next() {
		var room model.Room
		var loc sql.NullString
		if err := rows.Scan(&room.ID, &room.Name, &loc, &room.Capacity, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		if loc.Valid {
			l := loc.String
			room.Location = &l
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rooms, nil
}

// Update overwrites the given fields of an existing room and returns
// the updated row. Nil pointers leave the prior column value intact.
func (r *RoomRepo) Update(ctx context.Context, id uint64, name *string, location *string, capacity *uint32) (model.Room, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return model.Room{}, err
	}
	if name != nil {
		existing.Name = *name
	}
	if location != nil {
		existing.Location = location
	}
	if capacity != nil {
		existing.Capacity = *capacity
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE rooms SET name=?, location=?, capacity=? WHERE id=?",
		existing.Name, existing.Location, existing.Capacity, id)
	if err != nil {
		return model.Room{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a room; ErrRoomNotFound when no row was affected.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM rooms WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
