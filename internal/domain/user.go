package domain

import "time"

// Role controls which operations an account may perform.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User is the domain model for an account.
type User struct {
	ID           int64
	Name         string
	Email        string
	Mobile       string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserUpdate carries a partial update; nil fields are left unchanged.
// PasswordHash must already be hashed — plaintext never reaches storage.
type UserUpdate struct {
	Name         *string
	Email        *string
	Mobile       *string
	PasswordHash *string
	Role         *Role
	IsActive     *bool
}

// Empty reports whether the update carries no fields at all.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Mobile == nil &&
		u.PasswordHash == nil && u.Role == nil && u.IsActive == nil
}
