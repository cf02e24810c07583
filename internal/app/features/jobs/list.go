// internal/app/features/jobs/list.go
package jobs

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
)

// ServeJobs handles GET /jobs for institution admins.
func (h *Handler) ServeJobs(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list jobs")
	defer cancel()

	jobs, err := h.Svc.ListJobs(ctx, p)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"message": "jobs", "jobs": jobs})
}

// ServeEligibleJobs handles GET /jobs/eligible for students.
func (h *Handler) ServeEligibleJobs(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list eligible jobs")
	defer cancel()

	jobs, err := h.Svc.ListEligibleJobs(ctx, p)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"message": "eligible jobs", "jobs": jobs})
}

// ServeJob handles GET /jobs/{jobId}.
func (h *Handler) ServeJob(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}
	jobID, err := shared.ObjectIDParam(r, "jobId")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get job")
	defer cancel()

	job, err := h.Svc.GetJob(ctx, p, jobID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"message": "job", "job": job})
}
