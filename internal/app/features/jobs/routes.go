// internal/app/features/jobs/routes.go
package jobs

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns the /jobs router. Callers mount the rounds and
// placements subrouters on it under /{jobId}.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)

		// ADMIN
		pr.With(sm.RequireRole(models.RoleInstitutionAdmin)).Post("/eligible-students", h.HandlePreviewEligible)
		pr.With(sm.RequireRole(models.RoleInstitutionAdmin)).Post("/", h.HandleCreateJob)
		pr.With(sm.RequireRole(models.RoleInstitutionAdmin)).Get("/", h.ServeJobs)
		pr.With(sm.RequireRole(models.RoleInstitutionAdmin)).Delete("/{jobId}", h.HandleDeleteJob)
		pr.With(sm.RequireRole(models.RoleInstitutionAdmin, models.RoleGlobalAdmin)).Get("/{jobId}/applied-students", h.ServeAppliedStudents)

		// STUDENT
		pr.With(sm.RequireRole(models.RoleStudent)).Get("/eligible", h.ServeEligibleJobs)
		pr.With(sm.RequireRole(models.RoleStudent)).Post("/{jobId}/apply", h.HandleApply)

		// OWNER OR CREATOR (checked by the service)
		pr.Get("/{jobId}", h.ServeJob)
		pr.Put("/{jobId}/logo", h.HandleUpdateLogo)
	})

	return r
}
