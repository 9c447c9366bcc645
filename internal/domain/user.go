package domain

import "time"

// UserRole distinguishes citizens from administrators.
type UserRole string

const (
	RoleCitizen UserRole = "citizen"
	RoleAdmin   UserRole = "admin"
)

// User is the domain model for registered portal accounts.
type User struct {
	ID           string
	Name         string
	Email        string
	Role         UserRole
	Phone        *string
	Address      *string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
