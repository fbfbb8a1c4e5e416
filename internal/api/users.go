package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dirgate/internal/domain"
)

type createUserRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	Active    *bool  `json:"active"`
	Password  string `json:"password"`
}

type updateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Role      *string `json:"role"`
	Active    *bool   `json:"active"`
}

func (h *Handlers) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageUsers) {
		return
	}
	var req createUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	u, err := h.Users.Create(r.Context(), domain.CreateUserRequest{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Active:    req.Active,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

func (h *Handlers) handleListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapReadDirectory) {
		return
	}
	page := pageFromQuery(r)
	users, total, err := h.Users.List(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(toUserResponses(users), total, page))
}

func (h *Handlers) handleGetUser(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapReadDirectory) {
		return
	}
	u, err := h.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handlers) handleUserGroups(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapReadDirectory) {
		return
	}
	groups, err := h.Users.Groups(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]groupResponse{"groups": toGroupResponses(groups)})
}

func (h *Handlers) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageUsers) {
		return
	}
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	u, err := h.Users.Update(r.Context(), chi.URLParam(r, "id"), domain.UpdateUserRequest{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Active:    req.Active,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handlers) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageUsers) {
		return
	}
	if err := h.Users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// handleResetPassword sets a new password for another account without the
// current one. Management operation, distinct from self-service change.
func (h *Handlers) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageUsers) {
		return
	}
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := h.Auth.ResetPassword(r.Context(), chi.URLParam(r, "id"), req.NewPassword); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUnlockUser clears an account lock ahead of its expiry.
func (h *Handlers) handleUnlockUser(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageUsers) {
		return
	}
	if err := h.Auth.Unlock(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
