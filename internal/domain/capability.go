package domain

// Capability tags. A capability is an atomic permission checked by the
// authorization engine; groups carry sets of them.
const (
	// CapAll is the wildcard capability. It satisfies any authorization
	// check and is part of the admin role baseline.
	CapAll = "*"

	CapReadDirectory   = "read_directory"
	CapManageUsers     = "manage_users"
	CapManageGroups    = "manage_groups"
	CapManageComputers = "manage_computers"
	CapManageOUs       = "manage_ous"
	CapViewAudit       = "view_audit"
)

// KnownCapabilities lists every capability that can be granted to a group.
// The wildcard is reserved for the admin role baseline and is not grantable.
var KnownCapabilities = []string{
	CapReadDirectory,
	CapManageUsers,
	CapManageGroups,
	CapManageComputers,
	CapManageOUs,
	CapViewAudit,
}

// ValidCapability reports whether cap is a grantable capability tag.
func ValidCapability(cap string) bool {
	for _, c := range KnownCapabilities {
		if c == cap {
			return true
		}
	}
	return false
}

// RoleBaseline returns the capability set implied by a role, before any
// group memberships are considered.
func RoleBaseline(role string) []string {
	switch role {
	case RoleAdmin:
		return []string{CapAll}
	case RoleUser:
		return []string{CapReadDirectory}
	default:
		return nil
	}
}

// CapabilitySet is a set of capability tags.
type CapabilitySet map[string]bool

// NewCapabilitySet builds a set from the given tags.
func NewCapabilitySet(caps ...string) CapabilitySet {
	s := make(CapabilitySet, len(caps))
	for _, c := range caps {
		s[c] = true
	}
	return s
}

// Add inserts the given tags into the set.
func (s CapabilitySet) Add(caps ...string) {
	for _, c := range caps {
		s[c] = true
	}
}

// Satisfies reports whether the set grants the given capability, honouring
// the wildcard.
func (s CapabilitySet) Satisfies(cap string) bool {
	return s[CapAll] || s[cap]
}

// Slice returns the tags in the set, in unspecified order.
func (s CapabilitySet) Slice() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	return out
}
