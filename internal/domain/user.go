package domain

import (
	"strings"
	"time"
)

// Roles a user can hold. The role sets the baseline capability set; group
// memberships add to it.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is a principal that can authenticate against the directory.
// The credential hash is deliberately not part of this struct; it never
// leaves the credential store.
type User struct {
	ID             string
	Username       string
	Email          string
	FirstName      string
	LastName       string
	Role           string // "admin" or "user"
	Active         bool
	FailedAttempts int
	LockedUntil    *time.Time
	LastLogin      *time.Time
	CreatedAt      time.Time
}

// Locked reports whether the account is locked as of now.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}

// DisplayName returns "First Last", falling back to the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// CreateUserRequest holds parameters for creating a new user.
type CreateUserRequest struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      string
	Active    *bool // defaults to true
	Password  string
}

// Validate checks that the request is well-formed.
func (r *CreateUserRequest) Validate() error {
	if r.Username == "" {
		return ErrValidation("username is required")
	}
	if r.Email == "" {
		return ErrValidation("email is required")
	}
	if r.Role == "" {
		r.Role = RoleUser
	}
	if r.Role != RoleAdmin && r.Role != RoleUser {
		return ErrValidation("role must be 'admin' or 'user'")
	}
	return nil
}

// UpdateUserRequest holds partial updates for a user. Nil fields are unchanged.
type UpdateUserRequest struct {
	Email     *string
	FirstName *string
	LastName  *string
	Role      *string
	Active    *bool
}

// Validate checks that the request is well-formed.
func (r *UpdateUserRequest) Validate() error {
	if r.Role != nil && *r.Role != RoleAdmin && *r.Role != RoleUser {
		return ErrValidation("role must be 'admin' or 'user'")
	}
	if r.Email != nil && *r.Email == "" {
		return ErrValidation("email cannot be empty")
	}
	return nil
}
