package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dirgate/internal/domain"
)

type createComputerRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	OperatingSystem string  `json:"operating_system"`
	IPAddress       string  `json:"ip_address"`
	OUID            *string `json:"ou_id"`
}

type updateComputerRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	OperatingSystem *string `json:"operating_system"`
	IPAddress       *string `json:"ip_address"`
	OUID            *string `json:"ou_id"`
	ClearOU         bool    `json:"clear_ou"`
}

func (h *Handlers) handleCreateComputer(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageComputers) {
		return
	}
	var req createComputerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	c, err := h.Computers.Create(r.Context(), domain.CreateComputerRequest{
		Name:            req.Name,
		Description:     req.Description,
		OperatingSystem: req.OperatingSystem,
		IPAddress:       req.IPAddress,
		OUID:            req.OUID,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toComputerResponse(c))
}

func (h *Handlers) handleListComputers(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapReadDirectory) {
		return
	}
	page := pageFromQuery(r)
	computers, total, err := h.Computers.List(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(toComputerResponses(computers), total, page))
}

func (h *Handlers) handleGetComputer(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapReadDirectory) {
		return
	}
	c, err := h.Computers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toComputerResponse(c))
}

func (h *Handlers) handleUpdateComputer(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageComputers) {
		return
	}
	var req updateComputerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	c, err := h.Computers.Update(r.Context(), chi.URLParam(r, "id"), domain.UpdateComputerRequest{
		Name:            req.Name,
		Description:     req.Description,
		OperatingSystem: req.OperatingSystem,
		IPAddress:       req.IPAddress,
		OUID:            req.OUID,
		ClearOU:         req.ClearOU,
	})
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toComputerResponse(c))
}

func (h *Handlers) handleDeleteComputer(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageComputers) {
		return
	}
	if err := h.Computers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status"`
}

// handleComputerStatus moves a computer through its status state machine.
func (h *Handlers) handleComputerStatus(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapManageComputers) {
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	c, err := h.Computers.ChangeStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, toComputerResponse(c))
}
