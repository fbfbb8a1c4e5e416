package service

import (
	"context"
	"fmt"

	"dirgate/internal/domain"
)

// UserService handles user account management.
type UserService struct {
	users       domain.UserRepository
	groups      domain.GroupRepository
	credentials *CredentialStore
	rules       []domain.PasswordRule
	recorder    *Recorder
}

// NewUserService creates a new UserService.
func NewUserService(
	users domain.UserRepository,
	groups domain.GroupRepository,
	credentials *CredentialStore,
	rules []domain.PasswordRule,
	recorder *Recorder,
) *UserService {
	return &UserService{
		users:       users,
		groups:      groups,
		credentials: credentials,
		rules:       rules,
		recorder:    recorder,
	}
}

// Create validates the request and the initial password, creates the account,
// and stores the credential.
func (s *UserService) Create(ctx context.Context, req domain.CreateUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := domain.ValidatePassword(req.Password, s.rules); err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}
	u, err := s.users.Create(ctx, &domain.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Active:    active,
	})
	if err != nil {
		return nil, err
	}
	if err := s.credentials.Set(ctx, u.ID, req.Password); err != nil {
		return nil, err
	}

	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionUserCreated, u.Username,
		fmt.Sprintf("role=%s", u.Role)))
	return u, nil
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// List returns users matching the search term, paginated.
func (s *UserService) List(ctx context.Context, search string, page domain.PageRequest) ([]domain.User, int64, error) {
	return s.users.List(ctx, search, page)
}

// Groups returns the groups the user belongs to.
func (s *UserService) Groups(ctx context.Context, id string) ([]domain.Group, error) {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.groups.GroupsForUser(ctx, id)
}

// Update applies a partial update to a user.
func (s *UserService) Update(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	u, err := s.users.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionUserUpdated, u.Username, ""))
	return u, nil
}

// Delete removes a user. Principals cannot delete their own account; that
// would orphan the session performing the deletion.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if p, ok := domain.PrincipalFromContext(ctx); ok && p.ID == id {
		return domain.ErrConflict("cannot delete your own account")
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.recorder.Record(ctx, auditFromContext(ctx, domain.ActionUserDeleted, u.Username, ""))
	return nil
}
