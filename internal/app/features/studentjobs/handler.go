// internal/app/features/studentjobs/handler.go
//
// Package studentjobs serves a student's own view of the jobs they applied
// to: per-round status, placements and the notification feed.
package studentjobs

import (
	"github.com/dalemusser/placementhub/internal/app/placement"
	"go.uber.org/zap"
)

type Handler struct {
	Svc *placement.Service
	Log *zap.Logger
}

func NewHandler(svc *placement.Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}
