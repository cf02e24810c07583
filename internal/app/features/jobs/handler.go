// internal/app/features/jobs/handler.go
package jobs

import (
	"github.com/dalemusser/placementhub/internal/app/placement"
	"go.uber.org/zap"
)

// Handler serves the job postings API.
type Handler struct {
	Svc *placement.Service
	Log *zap.Logger
}

func NewHandler(svc *placement.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}
