package domain

import "time"

// OrganizationalUnit is a hierarchical grouping container. ParentID is nil
// for top-level OUs; the parent relation forms a tree and must stay acyclic.
type OrganizationalUnit struct {
	ID          string
	Name        string
	Description string
	ParentID    *string
	CreatedAt   time.Time
}

// CreateOURequest holds parameters for creating a new organizational unit.
type CreateOURequest struct {
	Name        string
	Description string
	ParentID    *string
}

// Validate checks that the request is well-formed.
func (r *CreateOURequest) Validate() error {
	if r.Name == "" {
		return ErrValidation("OU name is required")
	}
	return nil
}

// UpdateOURequest holds partial updates for an organizational unit. Nil
// fields are unchanged.
type UpdateOURequest struct {
	Name        *string
	Description *string
	ParentID    *string
	ClearParent bool // move the OU to the top level
}

// Validate checks that the request is well-formed.
func (r *UpdateOURequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ErrValidation("OU name cannot be empty")
	}
	if r.ClearParent && r.ParentID != nil {
		return ErrValidation("cannot both assign and clear the parent")
	}
	return nil
}
