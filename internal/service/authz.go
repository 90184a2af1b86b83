package service

import "github.com/iliyamo/meeting-room-reservation/internal/model"

// Principal is the authenticated identity attached to every mutating
// operation. It is an immutable value extracted from the verified JWT
// by the HTTP layer; the engine never looks identity up ambiently.
type Principal struct {
	UserID uint64
	Role   string
}

// IsAdmin reports whether the principal carries the ADMIN role.
func (p Principal) IsAdmin() bool { return p.Role == model.RoleAdmin }

// CanMutate decides whether the acting principal may change or remove a
// reservation owned by ownerID. Administrators may mutate anything;
// everyone else only their own rows. Pure decision, no store access.
func CanMutate(actor Principal, ownerID uint64) bool {
	if actor.IsAdmin() {
		return true
	}
	return actor.UserID == ownerID
}
