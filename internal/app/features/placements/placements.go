// internal/app/features/placements/placements.go
package placements

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared"
	"github.com/dalemusser/placementhub/internal/app/placement"
	"github.com/dalemusser/placementhub/internal/app/system/payload"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
)

type addPlacementRequest struct {
	StudentID     string  `json:"student_id"`
	PackageAmount float64 `json:"package_amount"`
	PlacedOn      *string `json:"placed_on"`
}

// HandleAddPlacement handles POST /jobs/{jobId}/placements.
func (h *Handler) HandleAddPlacement(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}
	jobID, err := shared.ObjectIDParam(r, "jobId")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	var req addPlacementRequest
	if err := payload.Decode(r, payload.AddPlacement, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	studentIDs, err := shared.ObjectIDs("student_id", []string{req.StudentID})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	placedOn, err := shared.OptionalTime("placed_on", req.PlacedOn)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "add placement")
	defer cancel()

	pl, err := h.Svc.AddPlacement(ctx, p, jobID, placement.PlacementInput{
		StudentID:     studentIDs[0],
		PackageAmount: req.PackageAmount,
		PlacedOn:      placedOn,
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{"message": "placement added", "placement": pl})
}

// ServePlacements handles GET /jobs/{jobId}/placements.
func (h *Handler) ServePlacements(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}
	jobID, err := shared.ObjectIDParam(r, "jobId")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list placements")
	defer cancel()

	views, err := h.Svc.PlacementsForJob(ctx, p, jobID)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"message": "placements", "placements": views})
}
