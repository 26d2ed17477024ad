package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the authenticated caller extracted from an access token.
type Principal struct {
	UserID uuid.UUID `json:"id"`
	Email  string    `json:"email"`
	Role   Role      `json:"role"`
}

func (p Principal) HasRole(roles ...Role) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
