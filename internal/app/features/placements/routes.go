// internal/app/features/placements/routes.go
package placements

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /jobs/{jobId}/placements.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleInstitutionAdmin))

		pr.Post("/", h.HandleAddPlacement)
		pr.Get("/", h.ServePlacements)
	})
	return r
}
