package api

import (
	"net/http"
	"sort"

	"dirgate/internal/domain"
	"dirgate/internal/middleware"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// handleLogin authenticates a username/password pair. Public route.
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeBadRequest(w, "username and password are required")
		return
	}

	res, err := h.Auth.Login(r.Context(), req.Username, req.Password, middleware.ClientIP(r))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: res.Token, User: toUserResponse(res.User)})
}

// handleLogout records the end of the session.
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.Auth.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the authenticated account.
func (h *Handlers) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Get(r.Context(), principal(r).ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

// handlePermissions returns the caller's effective capability set.
func (h *Handlers) handlePermissions(w http.ResponseWriter, r *http.Request) {
	set, err := h.Authz.EffectivePermissions(r.Context(), principal(r).ID)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"capabilities": sortedCaps(set)})
}

// handleAuthorize answers a single capability check for the caller.
func (h *Handlers) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	capability := r.URL.Query().Get("capability")
	if capability == "" {
		writeBadRequest(w, "capability query parameter is required")
		return
	}
	if err := h.Authz.Authorize(r.Context(), principal(r).ID, capability); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// handleChangePassword rotates the caller's own password.
func (h *Handlers) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := h.Auth.ChangePassword(r.Context(), principal(r).ID, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sortedCaps(set domain.CapabilitySet) []string {
	caps := set.Slice()
	sort.Strings(caps)
	return caps
}
