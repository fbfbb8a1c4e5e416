package api

import (
	"net/http"
	"time"

	"dirgate/internal/domain"
)

// handleListAudit returns audit records oldest first, with optional filters:
// actor, action, since (RFC3339), and search (substring over action, target,
// and details).
func (h *Handlers) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapViewAudit) {
		return
	}

	filter := domain.AuditFilter{Page: pageFromQuery(r)}
	q := r.URL.Query()
	if v := q.Get("actor"); v != "" {
		filter.ActorName = &v
	}
	if v := q.Get("action"); v != "" {
		filter.Action = &v
	}
	if v := q.Get("search"); v != "" {
		filter.Search = &v
	}
	if v := q.Get("since"); v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "since must be an RFC3339 timestamp")
			return
		}
		filter.Since = &ts
	}

	records, total, err := h.Audit.List(r.Context(), filter)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(toAuditResponses(records), total, filter.Page))
}

// handleStats returns the dashboard summary.
func (h *Handlers) handleStats(w http.ResponseWriter, r *http.Request) {
	if !h.require(w, r, domain.CapReadDirectory) {
		return
	}
	stats, err := h.Stats.Summary(r.Context())
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{
		TotalUsers:      stats.TotalUsers,
		ActiveUsers:     stats.ActiveUsers,
		TotalGroups:     stats.TotalGroups,
		TotalComputers:  stats.TotalComputers,
		OnlineComputers: stats.OnlineComputers,
		TotalOUs:        stats.TotalOUs,
		RecentAudit:     toAuditResponses(stats.RecentAudit),
	})
}

// handleHealth reports liveness plus the audit recorder's degraded flag.
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.Audit.Degraded() {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         status,
		"audit_degraded": h.Audit.Degraded(),
	})
}
