package domain

import "time"

// Computer statuses.
const (
	StatusOnline     = "online"
	StatusOffline    = "offline"
	StatusRestarting = "restarting"
)

// statusTransitions enumerates the permitted status changes.
var statusTransitions = map[string][]string{
	StatusOnline:     {StatusOffline, StatusRestarting},
	StatusOffline:    {StatusOnline},
	StatusRestarting: {StatusOnline, StatusOffline},
}

// ValidStatus reports whether s is a known computer status.
func ValidStatus(s string) bool {
	_, ok := statusTransitions[s]
	return ok
}

// ValidStatusTransition reports whether a computer may move from one status
// to another. A no-op transition (from == to) is not permitted.
func ValidStatusTransition(from, to string) bool {
	for _, t := range statusTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Computer is a machine account. OUID is nil for computers at the directory
// root; Name is unique within its OU scope.
type Computer struct {
	ID              string
	Name            string
	Description     string
	OperatingSystem string
	IPAddress       string
	Status          string
	OUID            *string
	LastSeen        *time.Time
	CreatedAt       time.Time
}

// CreateComputerRequest holds parameters for creating a new computer.
type CreateComputerRequest struct {
	Name            string
	Description     string
	OperatingSystem string
	IPAddress       string
	OUID            *string
}

// Validate checks that the request is well-formed.
func (r *CreateComputerRequest) Validate() error {
	if r.Name == "" {
		return ErrValidation("computer name is required")
	}
	return nil
}

// UpdateComputerRequest holds partial updates for a computer. Nil fields are
// unchanged. Status is not updatable here; the status transition operation
// enforces the transition rules.
type UpdateComputerRequest struct {
	Name            *string
	Description     *string
	OperatingSystem *string
	IPAddress       *string
	OUID            *string
	ClearOU         bool // move the computer to the root scope
}

// Validate checks that the request is well-formed.
func (r *UpdateComputerRequest) Validate() error {
	if r.Name != nil && *r.Name == "" {
		return ErrValidation("computer name cannot be empty")
	}
	if r.ClearOU && r.OUID != nil {
		return ErrValidation("cannot both assign and clear the OU")
	}
	return nil
}
