package domain

// LoginResult is returned on an admitted login attempt. Rejections are
// reported as *BadCredentialError or *LockedError so callers can render
// distinct messages without learning which usernames exist.
type LoginResult struct {
	User  *User
	Token string // session JWT, set by the host-facing auth service
}
