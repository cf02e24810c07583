// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the audit trail under the path where this router is
// mounted (typically "/audit" from bootstrap).
//
// Institution admins see their own institution's events; global admins
// see every institution and may filter by one.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleInstitutionAdmin, models.RoleGlobalAdmin))

		pr.Get("/", h.ServeList)
	})

	return r
}
