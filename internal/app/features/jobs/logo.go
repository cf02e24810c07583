// internal/app/features/jobs/logo.go
package jobs

import (
	"errors"
	"net/http"

	"github.com/dalemusser/placementhub/internal/app/features/shared"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/assets"
	"github.com/dalemusser/placementhub/internal/app/system/limits"
	"github.com/dalemusser/placementhub/internal/app/system/respond"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleUpdateLogo handles PUT /jobs/{jobId}/logo with a multipart "logo"
// file.
func (h *Handler) HandleUpdateLogo(w http.ResponseWriter, r *http.Request) {
	p, ok := shared.Principal(w, r)
	if !ok {
		return
	}
	jobID, err := shared.ObjectIDParam(r, "jobId")
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxLogoForm)
	if err := r.ParseMultipartForm(assets.MaxLogoBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respond.Error(w, r, h.Log, apperr.Validation("logo is too large", map[string]string{"logo": "must be at most 2 MB"}))
			return
		}
		respond.Error(w, r, h.Log, apperr.Validation("expected a multipart form", map[string]string{"logo": "is required"}))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("logo")
	if err != nil {
		respond.Error(w, r, h.Log, apperr.Validation("logo file is required", map[string]string{"logo": "is required"}))
		return
	}
	defer file.Close()

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "update job logo")
	defer cancel()

	job, err := h.Svc.UpdateLogo(ctx, p, jobID, header.Filename, file)
	if err != nil {
		respond.Error(w, r, h.Log, err)
		return
	}
	h.Log.Info("job logo updated", zap.String("job_id", job.ID.Hex()), zap.String("path", job.LogoPath))
	respond.JSON(w, http.StatusOK, map[string]any{"message": "logo updated", "logo": job.Logo})
}
