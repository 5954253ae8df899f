package entity

import "github.com/google/uuid"

// Principal is the authenticated caller, passed explicitly into every service call that acts for a user.
type Principal struct {
	UserID uuid.UUID
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanModify reports whether the principal owns the resource or is an admin.
func (p Principal) CanModify(ownerID uuid.UUID) bool {
	return p.UserID == ownerID || p.IsAdmin()
}
