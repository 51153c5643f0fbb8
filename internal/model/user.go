package model

import "time"

type Role string

const (
	RoleCustomer   Role = "CUSTOMER"
	RoleDonor      Role = "DONOR"
	RoleNeedy      Role = "NEEDY"
	RoleRestaurant Role = "RESTAURANT"
	RoleAdmin      Role = "ADMIN"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleDonor, RoleNeedy, RoleRestaurant, RoleAdmin:
		return true
	}
	return false
}

// User is the reference row for restaurants and every kind of buyer.
type User struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Actor is the authenticated caller of an engine operation.
type Actor struct {
	UserID int
	Role   Role
}

func (a Actor) Is(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
