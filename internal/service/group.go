package service

import (
	"context"
	"fmt"

	"dirgate/internal/domain"
)

// GroupService handles group management, membership, and capability grants.
type GroupService struct {
	groups   domain.GroupRepository
	users    domain.UserRepository
	recorder *Recorder
}

// NewGroupService creates a new GroupService.
func NewGroupService(groups domain.GroupRepository, users domain.UserRepository, recorder *Recorder) *GroupService {
	return &GroupService{groups: groups, users: users, recorder: recorder}
}

// Create validates and creates a group with its initial capability set.
func (s *GroupService) Create(ctx context.Context, req domain.CreateGroupRequest) (*domain.Group, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	g, err := s.groups.Create(ctx, &domain.Group{
		Name:         req.Name,
		Description:  req.Description,
		Capabilities: req.Capabilities,
	})
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionGroupCreated, g.Name, ""))
	return g, nil
}

// Get returns a group by ID.
func (s *GroupService) Get(ctx context.Context, id string) (*domain.Group, error) {
	return s.groups.GetByID(ctx, id)
}

// List returns groups matching the search term, paginated.
func (s *GroupService) List(ctx context.Context, search string, page domain.PageRequest) ([]domain.Group, int64, error) {
	return s.groups.List(ctx, search, page)
}

// Update applies a partial update to a group.
func (s *GroupService) Update(ctx context.Context, id string, req domain.UpdateGroupRequest) (*domain.Group, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	g, err := s.groups.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionGroupUpdated, g.Name, ""))
	return g, nil
}

// Delete removes a group. Memberships and capability grants go with it;
// member accounts are untouched.
func (s *GroupService) Delete(ctx context.Context, id string) error {
	g, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionGroupDeleted, g.Name, ""))
	return nil
}

// AddMember adds a user to a group. Adding an existing member succeeds
// without a second audit record.
func (s *GroupService) AddMember(ctx context.Context, groupID, userID string) error {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	memberOf, err := s.groups.GroupsForUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, m := range memberOf {
		if m.ID == groupID {
			return nil
		}
	}

	if err := s.groups.AddMember(ctx, groupID, userID); err != nil {
		return err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionMemberAdded, g.Name,
		fmt.Sprintf("user=%s", u.Username)))
	return nil
}

// RemoveMember removes a user from a group. Removing a non-member succeeds
// without an audit record.
func (s *GroupService) RemoveMember(ctx context.Context, groupID, userID string) error {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	memberOf, err := s.groups.GroupsForUser(ctx, userID)
	if err != nil {
		return err
	}
	member := false
	for _, m := range memberOf {
		if m.ID == groupID {
			member = true
			break
		}
	}
	if !member {
		return nil
	}

	if err := s.groups.RemoveMember(ctx, groupID, userID); err != nil {
		return err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionMemberRemoved, g.Name,
		fmt.Sprintf("user=%s", u.Username)))
	return nil
}

// Members returns the group's members, paginated.
func (s *GroupService) Members(ctx context.Context, groupID string, page domain.PageRequest) ([]domain.User, int64, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, 0, err
	}
	return s.groups.ListMembers(ctx, groupID, page)
}

// GrantCapability adds a capability to the group's set. The wildcard is not
// grantable; it belongs to the admin role baseline only.
func (s *GroupService) GrantCapability(ctx context.Context, groupID, capability string) error {
	if !domain.ValidCapability(capability) {
		return domain.ErrValidation("unknown capability %q", capability)
	}
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.groups.GrantCapability(ctx, groupID, capability); err != nil {
		return err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionCapabilityGranted, g.Name,
		fmt.Sprintf("capability=%s", capability)))
	return nil
}

// RevokeCapability removes a capability from the group's set.
func (s *GroupService) RevokeCapability(ctx context.Context, groupID, capability string) error {
	g, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if err := s.groups.RevokeCapability(ctx, groupID, capability); err != nil {
		return err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionCapabilityRevoked, g.Name,
		fmt.Sprintf("capability=%s", capability)))
	return nil
}
