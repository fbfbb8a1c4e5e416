package service

import (
	"context"

	"dirgate/internal/domain"
	"dirgate/internal/metrics"
)

// AuthorizationService computes effective permissions and answers
// authorization checks. Permissions are resolved fresh on every call: a
// revoked capability takes effect on the next check, not the next session.
type AuthorizationService struct {
	users  domain.UserRepository
	groups domain.GroupRepository
}

// NewAuthorizationService creates a new AuthorizationService.
func NewAuthorizationService(users domain.UserRepository, groups domain.GroupRepository) *AuthorizationService {
	return &AuthorizationService{users: users, groups: groups}
}

// EffectivePermissions returns the union of the user's role baseline and the
// capabilities of every group the user belongs to.
func (s *AuthorizationService) EffectivePermissions(ctx context.Context, userID string) (domain.CapabilitySet, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	set := domain.NewCapabilitySet(domain.RoleBaseline(u.Role)...)

	caps, err := s.groups.CapabilitiesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	set.Add(caps...)
	return set, nil
}

// Authorize checks that the user holds the capability, directly or through
// the wildcard. Inactive users are denied everything.
func (s *AuthorizationService) Authorize(ctx context.Context, userID, capability string) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !u.Active {
		metrics.AuthorizationDenied.Inc()
		return domain.ErrAccessDenied("account %s is inactive", u.Username)
	}

	set := domain.NewCapabilitySet(domain.RoleBaseline(u.Role)...)
	if set.Satisfies(capability) {
		return nil
	}

	caps, err := s.groups.CapabilitiesForUser(ctx, userID)
	if err != nil {
		return err
	}
	set.Add(caps...)
	if set.Satisfies(capability) {
		return nil
	}

	metrics.AuthorizationDenied.Inc()
	return domain.ErrAccessDenied("missing capability %q", capability)
}
