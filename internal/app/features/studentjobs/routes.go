// internal/app/features/studentjobs/routes.go
package studentjobs

import (
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes is mounted under /me.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireSignedIn)
		pr.Use(sm.RequireRole(models.RoleStudent))

		pr.Get("/applications", h.ServeApplications)
		pr.Get("/notifications", h.ServeNotifications)
	})
	return r
}
