package domain

import (
	"context"
	"time"
)

// UserRepository provides CRUD and credential/lockout persistence for users.
// The credential hash is only reachable through SetCredential/GetCredential;
// it is never part of the User entity.
type UserRepository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, search string, page PageRequest) ([]User, int64, error)
	Update(ctx context.Context, id string, req UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, id string) error

	SetCredential(ctx context.Context, id string, hash string) error
	GetCredential(ctx context.Context, id string) (string, error)

	// SetLockout writes the failed-attempt counter and lock expiry in one
	// statement. A nil until clears the lock.
	SetLockout(ctx context.Context, id string, failedAttempts int, until *time.Time) error
	SetLastLogin(ctx context.Context, id string, at time.Time) error

	// ClearExpiredLocks unlocks every account whose lock expiry has passed
	// and returns how many rows changed. Used by the janitor sweep; lazy
	// unlock on access remains the correctness mechanism.
	ClearExpiredLocks(ctx context.Context, now time.Time) (int64, error)
}

// GroupRepository provides CRUD, membership, and capability persistence for
// groups.
type GroupRepository interface {
	Create(ctx context.Context, g *Group) (*Group, error)
	GetByID(ctx context.Context, id string) (*Group, error)
	GetByName(ctx context.Context, name string) (*Group, error)
	List(ctx context.Context, search string, page PageRequest) ([]Group, int64, error)
	Update(ctx context.Context, id string, req UpdateGroupRequest) (*Group, error)
	Delete(ctx context.Context, id string) error

	// AddMember and RemoveMember are idempotent: a duplicate add or a
	// missing remove succeeds as a no-op.
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	ListMembers(ctx context.Context, groupID string, page PageRequest) ([]User, int64, error)
	CountMembers(ctx context.Context, groupID string) (int64, error)
	GroupsForUser(ctx context.Context, userID string) ([]Group, error)

	GrantCapability(ctx context.Context, groupID, capability string) error
	RevokeCapability(ctx context.Context, groupID, capability string) error
	ListCapabilities(ctx context.Context, groupID string) ([]string, error)
	// CapabilitiesForUser returns the union of capability sets across every
	// group the user belongs to, in one query.
	CapabilitiesForUser(ctx context.Context, userID string) ([]string, error)
}

// ComputerRepository provides CRUD operations for computers.
type ComputerRepository interface {
	Create(ctx context.Context, c *Computer) (*Computer, error)
	GetByID(ctx context.Context, id string) (*Computer, error)
	List(ctx context.Context, search string, page PageRequest) ([]Computer, int64, error)
	Update(ctx context.Context, id string, req UpdateComputerRequest) (*Computer, error)
	Delete(ctx context.Context, id string) error

	// SetStatus updates the status and last-seen timestamp. A nil lastSeen
	// clears the column.
	SetStatus(ctx context.Context, id string, status string, lastSeen *time.Time) error
	CountByOU(ctx context.Context, ouID string) (int64, error)

	// MarkStaleOffline transitions every online computer whose last_seen is
	// older than the cutoff to offline and returns how many rows changed.
	MarkStaleOffline(ctx context.Context, cutoff time.Time) (int64, error)
}

// OURepository provides CRUD operations for organizational units.
type OURepository interface {
	Create(ctx context.Context, ou *OrganizationalUnit) (*OrganizationalUnit, error)
	GetByID(ctx context.Context, id string) (*OrganizationalUnit, error)
	List(ctx context.Context, page PageRequest) ([]OrganizationalUnit, int64, error)
	Update(ctx context.Context, id string, req UpdateOURequest) (*OrganizationalUnit, error)
	Children(ctx context.Context, id string) ([]OrganizationalUnit, error)
	CountChildren(ctx context.Context, id string) (int64, error)

	// Delete removes an empty OU.
	Delete(ctx context.Context, id string) error
	// DeleteCascade re-parents child OUs to the deleted OU's parent,
	// detaches its computers (OU reference set to NULL), and removes the OU
	// in a single transaction so no reader observes a partially updated
	// hierarchy.
	DeleteCascade(ctx context.Context, id string) error
}

// AuditRepository provides append and list operations for audit records.
type AuditRepository interface {
	Insert(ctx context.Context, rec *AuditRecord) error
	// List returns records matching the filter ordered by timestamp
	// ascending, restartable via the filter's page token.
	List(ctx context.Context, filter AuditFilter) ([]AuditRecord, int64, error)
}

// StatsRepository provides the dashboard summary.
type StatsRepository interface {
	Summary(ctx context.Context) (*DirectoryStats, error)
}
