// internal/app/placement/rounds.go
package placement

import (
	"context"

	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/domain/rounds"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateRounds appends rounds to a job and returns them with their
// assigned indices.
func (s *Service) CreateRounds(ctx context.Context, p authz.Principal, jobID primitive.ObjectID, specs []rounds.Spec) ([]models.Round, error) {
	var created []models.Round
	var saved models.Job
	err := s.retryOnConflict(ctx, "create rounds", jobID, func() error {
		job, err := s.loadJob(ctx, p, authz.ManageRounds, jobID)
		if err != nil {
			return err
		}
		next := job.Clone()
		created, err = rounds.Append(&next, specs)
		if err != nil {
			return err
		}
		saved, err = s.jobs.Replace(ctx, next)
		return storeErr(err, "save rounds")
	})
	if err != nil {
		return nil, err
	}
	s.audit.RoundsCreated(ctx, p.UserID, saved, created)
	return created, nil
}

// RecordResults replaces the outcome sets of one round.
func (s *Service) RecordResults(ctx context.Context, p authz.Principal, jobID, roundID primitive.ObjectID, res rounds.Results) (models.Round, error) {
	var round models.Round
	var saved models.Job
	err := s.retryOnConflict(ctx, "record results", jobID, func() error {
		job, err := s.loadJob(ctx, p, authz.ManageRounds, jobID)
		if err != nil {
			return err
		}
		next := job.Clone()
		round, err = rounds.Record(&next, roundID, res, rounds.Options{LockResolved: s.cfg.LockRoundResults})
		if err != nil {
			return err
		}
		saved, err = s.jobs.Replace(ctx, next)
		return storeErr(err, "save round results")
	})
	if err != nil {
		return models.Round{}, err
	}
	s.audit.RoundResultsRecorded(ctx, p.UserID, saved, round)
	return round, nil
}
