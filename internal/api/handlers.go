package api

import (
	"log/slog"
	"net/http"

	"dirgate/internal/service"
)

// Handlers bundles the services behind the HTTP API.
type Handlers struct {
	Auth      *service.AuthService
	Authz     *service.AuthorizationService
	Users     *service.UserService
	Groups    *service.GroupService
	Computers *service.ComputerService
	OUs       *service.OUService
	Audit     *service.Recorder
	Stats     *service.StatsService
	Log       *slog.Logger
}

// require checks that the request principal holds the capability. It writes
// the error response itself and reports whether the handler may proceed.
// Permissions are checked fresh against the store on every request.
func (h *Handlers) require(w http.ResponseWriter, r *http.Request, capability string) bool {
	p := principal(r)
	if err := h.Authz.Authorize(r.Context(), p.ID, capability); err != nil {
		writeError(w, h.Log, err)
		return false
	}
	return true
}
