package app

import (
	"context"
	"errors"
	"fmt"

	"dirgate/internal/domain"
)

// CreateAdmin creates an admin account with the given credentials. Used by the
// CLI to bootstrap the first login.
func (a *App) CreateAdmin(ctx context.Context, username, email, password string) (*domain.User, error) {
	u, err := a.Services.Users.Create(ctx, domain.CreateUserRequest{
		Username: username,
		Email:    email,
		Role:     domain.RoleAdmin,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("create admin %s: %w", username, err)
	}
	return u, nil
}

// Seed populates the directory with a demo data set: an admin, two regular
// accounts, an operators group, and an OU tree with computers. Idempotent,
// it checks for the admin account and does nothing when it already exists.
func (a *App) Seed(ctx context.Context, adminPassword string) error {
	if _, err := a.UserRepo.GetByUsername(ctx, "admin"); err == nil {
		return nil // already seeded
	} else {
		var notFound *domain.NotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}

	if _, err := a.CreateAdmin(ctx, "admin", "admin@example.com", adminPassword); err != nil {
		return err
	}

	users := []domain.CreateUserRequest{
		{Username: "jdoe", Email: "jdoe@example.com", FirstName: "John", LastName: "Doe", Role: domain.RoleUser, Password: adminPassword},
		{Username: "asmith", Email: "asmith@example.com", FirstName: "Alice", LastName: "Smith", Role: domain.RoleUser, Password: adminPassword},
	}
	var members []string
	for _, req := range users {
		u, err := a.Services.Users.Create(ctx, req)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", req.Username, err)
		}
		members = append(members, u.ID)
	}

	g, err := a.Services.Groups.Create(ctx, domain.CreateGroupRequest{
		Name:         "operators",
		Description:  "Directory operators",
		Capabilities: []string{domain.CapManageComputers, domain.CapViewAudit},
	})
	if err != nil {
		return fmt.Errorf("seed group operators: %w", err)
	}
	if err := a.Services.Groups.AddMember(ctx, g.ID, members[0]); err != nil {
		return fmt.Errorf("seed group membership: %w", err)
	}

	hq, err := a.Services.OUs.Create(ctx, domain.CreateOURequest{Name: "Headquarters"})
	if err != nil {
		return fmt.Errorf("seed ou: %w", err)
	}
	it, err := a.Services.OUs.Create(ctx, domain.CreateOURequest{Name: "IT", ParentID: &hq.ID})
	if err != nil {
		return fmt.Errorf("seed ou: %w", err)
	}

	computers := []domain.CreateComputerRequest{
		{Name: "hq-dc-01", OperatingSystem: "Windows Server 2022", IPAddress: "10.0.0.10", OUID: &hq.ID},
		{Name: "it-ws-01", OperatingSystem: "Ubuntu 24.04", IPAddress: "10.0.1.20", OUID: &it.ID},
	}
	for _, req := range computers {
		if _, err := a.Services.Computers.Create(ctx, req); err != nil {
			return fmt.Errorf("seed computer %s: %w", req.Name, err)
		}
	}
	return nil
}
