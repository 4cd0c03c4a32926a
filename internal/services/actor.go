package services

import "agrihub/internal/models"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID   uint
	Username string
	Roles    []string
}

func (a Actor) HasRole(role models.Role) bool {
	for _, r := range a.Roles {
		if r == string(role) {
			return true
		}
	}
	return false
}
