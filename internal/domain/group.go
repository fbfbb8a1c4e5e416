package domain

import "time"

// Group is a named collection of users carrying a capability set. Members
// inherit every capability granted to the group.
type Group struct {
	ID           string
	Name         string
	Description  string
	Capabilities []string
	CreatedAt    time.Time
}

// CreateGroupRequest holds parameters for creating a new group.
type CreateGroupRequest struct {
	Name         string
	Description  string
	Capabilities []string
}

// Validate checks that the request is well-formed.
func (r *CreateGroupRequest) Validate() error {
	if r.Name == "" {
		return ErrValidation("group name is required")
	}
	for _, c := range r.Capabilities {
		if !ValidCapability(c) {
			return ErrValidation("unknown capability %q", c)
		}
	}
	return nil
}

// UpdateGroupRequest holds partial updates for a group. Nil fields are unchanged.
type UpdateGroupRequest struct {
	Name        *string
	Description *string
}

// Validate checks that the request is well-formed.
func (r *UpdateGroupRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ErrValidation("group name cannot be empty")
	}
	return nil
}
