package service

import (
	"context"
	"strings"

	"dirgate/internal/domain"
)

// OUService handles the organizational unit hierarchy. Every mutation keeps
// the parent relation a tree: parents must exist and re-parenting may not
// close a cycle.
type OUService struct {
	ous       domain.OURepository
	computers domain.ComputerRepository
	recorder  *Recorder
}

// NewOUService creates a new OUService.
func NewOUService(ous domain.OURepository, computers domain.ComputerRepository, recorder *Recorder) *OUService {
	return &OUService{ous: ous, computers: computers, recorder: recorder}
}

// Create validates and creates an OU under the given parent, or at the top
// level when no parent is set.
func (s *OUService) Create(ctx context.Context, req domain.CreateOURequest) (*domain.OrganizationalUnit, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.ous.GetByID(ctx, *req.ParentID); err != nil {
			return nil, domain.ErrInvalidHierarchy("parent OU %s does not exist", *req.ParentID)
		}
	}
	ou, err := s.ous.Create(ctx, &domain.OrganizationalUnit{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionOUCreated, ou.Name, ""))
	return ou, nil
}

// Get returns an OU by ID.
func (s *OUService) Get(ctx context.Context, id string) (*domain.OrganizationalUnit, error) {
	return s.ous.GetByID(ctx, id)
}

// List returns all OUs, paginated.
func (s *OUService) List(ctx context.Context, page domain.PageRequest) ([]domain.OrganizationalUnit, int64, error) {
	return s.ous.List(ctx, page)
}

// Children returns the direct children of an OU.
func (s *OUService) Children(ctx context.Context, id string) ([]domain.OrganizationalUnit, error) {
	if _, err := s.ous.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.ous.Children(ctx, id)
}

// Path returns the OU's full path from the root, e.g. "HQ > IT > Helpdesk".
func (s *OUService) Path(ctx context.Context, id string) (string, error) {
	var names []string
	current := id
	for current != "" {
		ou, err := s.ous.GetByID(ctx, current)
		if err != nil {
			return "", err
		}
		names = append(names, ou.Name)
		if ou.ParentID == nil {
			break
		}
		current = *ou.ParentID
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, " > "), nil
}

// Update applies a partial update. A parent change is checked against the
// hierarchy: the new parent must exist, must not be the OU itself, and must
// not be one of its descendants.
func (s *OUService) Update(ctx context.Context, id string, req domain.UpdateOURequest) (*domain.OrganizationalUnit, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if err := s.checkReparent(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
	}
	ou, err := s.ous.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionOUUpdated, ou.Name, ""))
	return ou, nil
}

// checkReparent walks from the proposed parent up to the root. Meeting the
// OU being moved means the move would close a cycle.
func (s *OUService) checkReparent(ctx context.Context, id, newParentID string) error {
	if newParentID == id {
		return domain.ErrInvalidHierarchy("an OU cannot be its own parent")
	}
	current := newParentID
	for current != "" {
		ou, err := s.ous.GetByID(ctx, current)
		if err != nil {
			return domain.ErrInvalidHierarchy("parent OU %s does not exist", current)
		}
		if ou.ID == id {
			return domain.ErrInvalidHierarchy("moving OU under its own descendant would create a cycle")
		}
		if ou.ParentID == nil {
			break
		}
		current = *ou.ParentID
	}
	return nil
}

// Delete removes an OU that has no child OUs and no assigned computers.
func (s *OUService) Delete(ctx context.Context, id string) error {
	ou, err := s.ous.GetByID(ctx, id)
	if err != nil {
		return err
	}

	children, err := s.ous.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if children > 0 {
		return domain.ErrNotEmpty("OU %s still has %d child OU(s)", ou.Name, children)
	}
	computers, err := s.computers.CountByOU(ctx, id)
	if err != nil {
		return err
	}
	if computers > 0 {
		return domain.ErrNotEmpty("OU %s still has %d computer(s)", ou.Name, computers)
	}

	if err := s.ous.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionOUDeleted, ou.Name, ""))
	return nil
}

// DeleteCascade removes an OU, re-parenting its children to the OU's parent
// and detaching its computers to the root scope.
func (s *OUService) DeleteCascade(ctx context.Context, id string) error {
	ou, err := s.ous.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.ous.DeleteCascade(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionOUCascadeDeleted, ou.Name, ""))
	return nil
}
