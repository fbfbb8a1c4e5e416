package service

import (
	"context"
	"fmt"
	"time"

	"dirgate/internal/domain"
)

// ComputerService handles machine accounts and their status lifecycle.
type ComputerService struct {
	computers domain.ComputerRepository
	ous       domain.OURepository
	recorder  *Recorder
	now       func() time.Time
}

// NewComputerService creates a new ComputerService.
func NewComputerService(computers domain.ComputerRepository, ous domain.OURepository, recorder *Recorder) *ComputerService {
	return &ComputerService{computers: computers, ous: ous, recorder: recorder, now: time.Now}
}

// Create validates and creates a computer. New computers start offline. The
// target OU must exist; name collisions within the OU scope are conflicts.
func (s *ComputerService) Create(ctx context.Context, req domain.CreateComputerRequest) (*domain.Computer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.OUID != nil {
		if _, err := s.ous.GetByID(ctx, *req.OUID); err != nil {
			return nil, err
		}
	}
	c, err := s.computers.Create(ctx, &domain.Computer{
		Name:            req.Name,
		Description:     req.Description,
		OperatingSystem: req.OperatingSystem,
		IPAddress:       req.IPAddress,
		Status:          domain.StatusOffline,
		OUID:            req.OUID,
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionComputerCreated, c.Name, ""))
	return c, nil
}

// Get returns a computer by ID.
func (s *ComputerService) Get(ctx context.Context, id string) (*domain.Computer, error) {
	return s.computers.GetByID(ctx, id)
}

// List returns computers matching the search term, paginated.
func (s *ComputerService) List(ctx context.Context, search string, page domain.PageRequest) ([]domain.Computer, int64, error) {
	return s.computers.List(ctx, search, page)
}

// Update applies a partial update. Status is excluded; it only moves through
// ChangeStatus so the transition rules hold.
func (s *ComputerService) Update(ctx context.Context, id string, req domain.UpdateComputerRequest) (*domain.Computer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.OUID != nil {
		if _, err := s.ous.GetByID(ctx, *req.OUID); err != nil {
			return nil, err
		}
	}
	c, err := s.computers.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionComputerUpdated, c.Name, ""))
	return c, nil
}

// Delete removes a computer.
func (s *ComputerService) Delete(ctx context.Context, id string) error {
	c, err := s.computers.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.computers.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionComputerDeleted, c.Name, ""))
	return nil
}

// ChangeStatus moves a computer through its status state machine. Coming
// online refreshes the last-seen timestamp; other transitions keep it.
func (s *ComputerService) ChangeStatus(ctx context.Context, id, to string) (*domain.Computer, error) {
	if !domain.ValidStatus(to) {
		return nil, domain.ErrValidation("unknown status %q", to)
	}
	c, err := s.computers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.ValidStatusTransition(c.Status, to) {
		return nil, &domain.InvalidTransitionError{From: c.Status, To: to}
	}

	lastSeen := c.LastSeen
	if to == domain.StatusOnline {
		now := s.now().UTC().Truncate(time.Second)
		lastSeen = &now
	}
	if err := s.computers.SetStatus(ctx, id, to, lastSeen); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionComputerStatus, c.Name,
		fmt.Sprintf("%s -> %s", c.Status, to)))

	c.Status = to
	c.LastSeen = lastSeen
	return c, nil
}
