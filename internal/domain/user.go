package domain

import "time"

// Role enumerates authorization levels for accounts.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	return r == RoleUser || r == RoleAdmin
}

// Address is a postal address attached to a user profile.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
}

// User is the domain model for accounts that own tickets.
// PasswordHash never leaves the service layer.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Contact      string
	Addresses    []Address
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
