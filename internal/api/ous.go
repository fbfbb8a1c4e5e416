package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dirgate/internal/domain"
)

type createOURequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ParentID    *string `json:"parent_id"`
}

type updateOURequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ParentID    *string `json:"parent_id"`
	ClearParent bool    `json:"clear_parent"`
}

func (h *Handlers) handleCreateOU(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageOUs) {
		return
	}
	var req createOURequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	ou, err := h.OUs.Create(r.Context(), domain.CreateOURequest{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOUResponse(ou))
}

func (h *Handlers) handleListOUs(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapReadDirectory) {
		return
	}
	page := pageFromQuery(r)
	ous, total, err := h.OUs.List(r.Context(), page)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(toOUResponses(ous), total, page))
}

func (h *Handlers) handleGetOU(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapReadDirectory) {
		return
	}
	ou, err := h.OUs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toOUResponse(ou))
}

func (h *Handlers) handleOUChildren(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapReadDirectory) {
		return
	}
	children, err := h.OUs.Children(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]ouResponse{"children": toOUResponses(children)})
}

func (h *Handlers) handleOUPath(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapReadDirectory) {
		return
	}
	path, err := h.OUs.Path(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": path})
}

func (h *Handlers) handleUpdateOU(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageOUs) {
		return
	}
	var req updateOURequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	ou, err := h.OUs.Update(r.Context(), chi.URLParam(r, "id"), domain.UpdateOURequest{
		Name:        req.Name,
		Description: req.Description,
		ParentID:    req.ParentID,
		ClearParent: req.ClearParent,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toOUResponse(ou))
}

// handleDeleteOU deletes an OU. A plain delete requires the OU to be empty;
// cascade=true re-parents children and detaches computers instead.
func (h *Handlers) handleDeleteOU(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageOUs) {
		return
	}
	id := chi.URLParam(r, "id")
	cascade := strings.EqualFold(r.URL.Query().Get("cascade"), "true")

	var err error
	if cascade {
		err = h.OUs.DeleteCascade(r.Context(), id)
	} else {
		err = h.OUs.Delete(r.Context(), id)
	}
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
