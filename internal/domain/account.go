package domain

import "time"

// Role is a coarse authorization label carried by every account.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is a registered user of the service.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	Name         string
	Surname      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Sanitized returns a copy of the account without its password hash.
func (a Account) Sanitized() Account {
	a.PasswordHash = ""
	return a
}
