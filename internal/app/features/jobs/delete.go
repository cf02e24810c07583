// internal/app/features/jobs/delete.go
package jobs

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
)

// HandleDeleteJob handles DELETE /jobs/{jobId}. Rounds and placements go
// with the job; student histories are cleaned in the same unit of work.
func (h *Handler) HandleDeleteJob(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}
	jobID, err := shared.ObjectIDParam(r, "jobId")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "delete job")
	defer cancel()

	if err := h.Svc.DeleteJob(ctx, p, jobID); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"message": "job deleted"})
}
