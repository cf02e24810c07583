// internal/app/features/jobs/apply.go
package jobs

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
)

// HandleApply handles POST /jobs/{jobId}/apply.
func (h *Handler) HandleApply(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}
	jobID, err := shared.ObjectIDParam(r, "jobId")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "apply to job")
	defer cancel()

	if _, err := h.Svc.Apply(ctx, p, jobID); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"message": "application submitted"})
}

// ServeAppliedStudents handles GET /jobs/{jobId}/applied-students.
func (h *Handler) ServeAppliedStudents(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}
	jobID, err := shared.ObjectIDParam(r, "jobId")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "list applied students")
	defer cancel()

	students, err := h.Svc.AppliedStudents(ctx, p, jobID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":  "applied students",
		"students": students,
		"count":    len(students),
	})
}
