// internal/app/features/rounds/routes.go
package rounds

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /jobs/{jobId}/rounds.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleInstitutionAdmin, models.RoleGlobalAdmin))

		pr.Post("/", h.HandleCreateRounds)
		pr.Put("/{roundId}", h.HandleRecordResults)
	})
	return r
}
