package api

import (
	"time"

	"dirgate/internal/domain"
)

type userResponse struct {
	ID             string     `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	DisplayName    string     `json:"display_name"`
	Role           string     `json:"role"`
	Active         bool       `json:"active"`
	FailedAttempts int        `json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		DisplayName:    u.DisplayName(),
		Role:           u.Role,
		Active:         u.Active,
		FailedAttempts: u.FailedAttempts,
		LockedUntil:    u.LockedUntil,
		LastLogin:      u.LastLogin,
		CreatedAt:      u.CreatedAt,
	}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	return out
}

type groupResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Capabilities []string  `json:"capabilities"`
	CreatedAt    time.Time `json:"created_at"`
}

func toGroupResponse(g *domain.Group) groupResponse {
	caps := g.Capabilities
	if caps == nil {
		caps = []string{}
	}
	return groupResponse{
		ID:           g.ID,
		Name:         g.Name,
		Description:  g.Description,
		Capabilities: caps,
		CreatedAt:    g.CreatedAt,
	}
}

func toGroupResponses(groups []domain.Group) []groupResponse {
	out := make([]groupResponse, len(groups))
	for i := range groups {
		out[i] = toGroupResponse(&groups[i])
	}
	return out
}

type computerResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	OperatingSystem string     `json:"operating_system,omitempty"`
	IPAddress       string     `json:"ip_address,omitempty"`
	Status          string     `json:"status"`
	OUID            *string    `json:"ou_id,omitempty"`
	LastSeen        *time.Time `json:"last_seen,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func toComputerResponse(c *domain.Computer) computerResponse {
	return computerResponse{
		ID:              c.ID,
		Name:            c.Name,
		Description:     c.Description,
		OperatingSystem: c.OperatingSystem,
		IPAddress:       c.IPAddress,
		Status:          c.Status,
		OUID:            c.OUID,
		LastSeen:        c.LastSeen,
		CreatedAt:       c.CreatedAt,
	}
}

func toComputerResponses(computers []domain.Computer) []computerResponse {
	out := make([]computerResponse, len(computers))
	for i := range computers {
		out[i] = toComputerResponse(&computers[i])
	}
	return out
}

type ouResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ParentID    *string   `json:"parent_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toOUResponse(ou *domain.OrganizationalUnit) ouResponse {
	return ouResponse{
		ID:          ou.ID,
		Name:        ou.Name,
		Description: ou.Description,
		ParentID:    ou.ParentID,
		CreatedAt:   ou.CreatedAt,
	}
}

func toOUResponses(ous []domain.OrganizationalUnit) []ouResponse {
	out := make([]ouResponse, len(ous))
	for i := range ous {
		out[i] = toOUResponse(&ous[i])
	}
	return out
}

type auditResponse struct {
	ID        string    `json:"id"`
	ActorID   *string   `json:"actor_id,omitempty"`
	ActorName string    `json:"actor_name"`
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Details   string    `json:"details,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toAuditResponses(records []domain.AuditRecord) []auditResponse {
	out := make([]auditResponse, len(records))
	for i, rec := range records {
		out[i] = auditResponse{
			ID:        rec.ID,
			ActorID:   rec.ActorID,
			ActorName: rec.ActorName,
			Action:    rec.Action,
			Target:    rec.Target,
			Details:   rec.Details,
			IPAddress: rec.IPAddress,
			CreatedAt: rec.CreatedAt,
		}
	}
	return out
}

type statsResponse struct {
	TotalUsers      int64           `json:"total_users"`
	ActiveUsers     int64           `json:"active_users"`
	TotalGroups     int64           `json:"total_groups"`
	TotalComputers  int64           `json:"total_computers"`
	OnlineComputers int64           `json:"online_computers"`
	TotalOUs        int64           `json:"total_ous"`
	RecentAudit     []auditResponse `json:"recent_audit"`
}
