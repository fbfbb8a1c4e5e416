package domain

import "time"

// Audit actions recorded by the engine. Mutating services record exactly one
// entry per successful operation; login records one entry per outcome.
const (
	ActionLogin              = "LOGIN"
	ActionLoginFailed        = "LOGIN_FAILED"
	ActionLoginLocked        = "LOGIN_DENIED_LOCKED"
	ActionLoginInactive      = "LOGIN_DENIED_INACTIVE"
	ActionLogout             = "LOGOUT"
	ActionPasswordChanged    = "PASSWORD_CHANGED"
	ActionPasswordReset      = "PASSWORD_RESET"
	ActionUserCreated        = "USER_CREATED"
	ActionUserUpdated        = "USER_UPDATED"
	ActionUserDeleted        = "USER_DELETED"
	ActionGroupCreated       = "GROUP_CREATED"
	ActionGroupUpdated       = "GROUP_UPDATED"
	ActionGroupDeleted       = "GROUP_DELETED"
	ActionMemberAdded        = "MEMBER_ADDED"
	ActionMemberRemoved      = "MEMBER_REMOVED"
	ActionCapabilityGranted  = "CAPABILITY_GRANTED"
	ActionCapabilityRevoked  = "CAPABILITY_REVOKED"
	ActionComputerCreated    = "COMPUTER_CREATED"
	ActionComputerUpdated    = "COMPUTER_UPDATED"
	ActionComputerDeleted    = "COMPUTER_DELETED"
	ActionComputerStatus     = "COMPUTER_STATUS_CHANGED"
	ActionOUCreated          = "OU_CREATED"
	ActionOUUpdated          = "OU_UPDATED"
	ActionOUDeleted          = "OU_DELETED"
	ActionOUCascadeDeleted   = "OU_CASCADE_DELETED"
)

// AuditRecord is a single immutable audit log entry. ActorID is nil for
// system actions. ActorName is a snapshot taken at record time, so the actor
// may be deleted later while the record keeps its historical identity.
type AuditRecord struct {
	ID        string
	ActorID   *string
	ActorName string
	Action    string
	Target    string
	Details   string
	IPAddress string
	CreatedAt time.Time
}

// AuditFilter holds filter parameters for listing audit records.
type AuditFilter struct {
	ActorName *string
	Action    *string
	Since     *time.Time
	Search    *string // substring match over action, target, and details
	Page      PageRequest
}

// DirectoryStats is the dashboard summary of the directory graph.
type DirectoryStats struct {
	TotalUsers      int64
	ActiveUsers     int64
	TotalGroups     int64
	TotalComputers  int64
	OnlineComputers int64
	TotalOUs        int64
	RecentAudit     []AuditRecord
}
