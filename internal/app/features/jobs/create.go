// internal/app/features/jobs/create.go
package jobs

import (
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared"
	"github.com/dalemusser/placementhub/internal/app/placement"
	"github.com/dalemusser/placementhub/internal/app/system/payload"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/domain/models"
)

type previewRequest struct {
	Criteria models.EligibilityCriteria `json:"eligibility_criteria"`
}

type createJobRequest struct {
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Company     string                     `json:"company"`
	Location    string                     `json:"location"`
	Type        string                     `json:"type"`
	JobDate     string                     `json:"job_date"`
	Criteria    models.EligibilityCriteria `json:"eligibility_criteria"`
}

// HandlePreviewEligible handles POST /jobs/eligible-students.
func (h *Handler) HandlePreviewEligible(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}
	var req previewRequest
	if err := payload.Decode(r, payload.PreviewEligible, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "preview eligible students")
	defer cancel()

	students, err := h.Svc.PreviewEligible(ctx, p, req.Criteria)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{
		"message":  "eligible students",
		"students": students,
		"count":    len(students),
	})
}

// HandleCreateJob handles POST /jobs.
func (h *Handler) HandleCreateJob(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}
	var req createJobRequest
	if err := payload.Decode(r, payload.CreateJob, &req); err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	jobDate, err := shared.ParseTime("job_date", req.JobDate)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "create job")
	defer cancel()

	job, err := h.Svc.CreateJob(ctx, p, placement.JobInput{
		Title:       req.Title,
		Description: req.Description,
		Company:     req.Company,
		Location:    req.Location,
		Type:        req.Type,
		JobDate:     jobDate,
		Criteria:    req.Criteria,
	})
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, map[string]any{
		"message": "job created",
		"job":     job,
	})
}
