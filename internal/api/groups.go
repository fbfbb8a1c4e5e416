package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dirgate/internal/domain"
)

type createGroupRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Capabilities []string `json:"capabilities"`
}

type updateGroupRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *Handlers) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageGroups) {
		return
	}
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	g, err := h.Groups.Create(r.Context(), domain.CreateGroupRequest{
		Name:         req.Name,
		Description:  req.Description,
		Capabilities: req.Capabilities,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(g))
}

func (h *Handlers) handleListGroups(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapReadDirectory) {
		return
	}
	page := pageFromQuery(r)
	groups, total, err := h.Groups.List(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(toGroupResponses(groups), total, page))
}

func (h *Handlers) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapReadDirectory) {
		return
	}
	g, err := h.Groups.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(g))
}

func (h *Handlers) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageGroups) {
		return
	}
	var req updateGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	g, err := h.Groups.Update(r.Context(), chi.URLParam(r, "id"), domain.UpdateGroupRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(g))
}

func (h *Handlers) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageGroups) {
		return
	}
	if err := h.Groups.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleListMembers(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapReadDirectory) {
		return
	}
	page := pageFromQuery(r)
	members, total, err := h.Groups.Members(r.Context(), chi.URLParam(r, "id"), page)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(toUserResponses(members), total, page))
}

func (h *Handlers) handleAddMember(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageGroups) {
		return
	}
	if err := h.Groups.AddMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageGroups) {
		return
	}
	if err := h.Groups.RemoveMember(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "userID")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type capabilityRequest struct {
	Capability string `json:"capability"`
}

func (h *Handlers) handleGrantCapability(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageGroups) {
		return
	}
	var req capabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := h.Groups.GrantCapability(r.Context(), chi.URLParam(r, "id"), req.Capability); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) handleRevokeCapability(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageGroups) {
		return
	}
	if err := h.Groups.RevokeCapability(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "capability")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
