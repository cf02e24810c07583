// internal/app/features/placements/handler.go
package placements

import (
	"github.com/dalemusser/placementhub/internal/app/placement"
	"go.uber.org/zap"
)

// Handler serves the placements recorded on a job.
type Handler struct {
	Svc *placement.Service
	Log *zap.Logger
}

func NewHandler(svc *placement.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}
