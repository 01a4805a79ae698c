package models

import "time"

const (
	RoleClient  = "client"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	ContactPhone *string   `json:"contact_phone"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type UserSummary struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	ContactPhone *string `json:"contact_phone"`
}

// IsEmployee reports whether the role handles support tickets on the staff side.
func IsEmployee(role string) bool {
	return role == RoleManager || role == RoleAdmin
}
