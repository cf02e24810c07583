// internal/app/placement/applications.go
package placement

import (
	"context"
	"errors"

	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/ratelimit"
	"github.com/dalemusser/placementhub/internal/app/system/txn"
	"github.com/dalemusser/placementhub/internal/domain/eligibility"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Apply moves the calling student from the job's eligible snapshot to its
// applied snapshot and records the application on the student's history.
// Both writes commit together or not at all.
func (s *Service) Apply(ctx context.Context, p authz.Principal, jobID primitive.ObjectID) (models.Job, error) {
	if !p.IsStudent() {
		return models.Job{}, apperr.Authorization("only students can apply")
	}
	key := ratelimit.ApplyKey(p.UserID, jobID)
	if !s.limiter.Allow(key) {
		return models.Job{}, apperr.RateLimited("too many application attempts; try again shortly", s.limiter.RetryAfter(key))
	}

	student, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return models.Job{}, storeErr(err, "load student")
	}
	if !student.IsStudent() {
		return models.Job{}, apperr.Authorization("only active students can apply")
	}

	var applied models.Job
	err = s.retryOnConflict(ctx, "apply", jobID, func() error {
		job, err := s.jobs.GetByID(ctx, jobID)
		if err != nil {
			return storeErr(err, "load job")
		}
		if !authz.Can(p, authz.Apply, authz.JobResource(job)) {
			return apperr.Authorization("you cannot apply to this job")
		}
		if job.HasApplied(student.ID) {
			return apperr.Conflict("you have already applied to this job")
		}
		if !job.IsEligible(student.ID) {
			return apperr.Authorization("you are not eligible for this job")
		}

		prior, _ := job.EligibleEntry(student.ID)
		next := job.Clone()
		next.MoveToApplied(eligibility.Snapshot(student))
		entry := models.ApplicationHistoryEntry{JobID: job.ID, AppliedOn: now()}

		var saved models.Job
		err = txn.RunSteps(ctx, s.db, s.log,
			txn.Step{
				Name: "update job",
				Do: func(ctx context.Context) error {
					var err error
					saved, err = s.jobs.Replace(ctx, next)
					return err
				},
				Undo: func(ctx context.Context) error {
					return s.revertJob(ctx, job.ID, func(j *models.Job) bool { return j.UndoApply(prior) })
				},
			},
			txn.Step{
				Name: "add application history",
				Do: func(ctx context.Context) error {
					err := s.users.AddHistory(ctx, student.ID, entry)
					if errors.Is(err, userstore.ErrHistoryExists) {
						return apperr.Conflict("you have already applied to this job")
					}
					return err
				},
				Undo: func(ctx context.Context) error { return s.users.RemoveHistory(ctx, student.ID, job.ID) },
			},
			txn.Step{
				Name: "confirm job",
				Do: func(ctx context.Context) error {
					// A delete that ran between the two writes would leave
					// the history entry behind.
					_, err := s.jobs.GetByID(ctx, job.ID)
					return err
				},
			},
		)
		if err != nil {
			return storeErr(err, "apply")
		}
		applied = saved
		return nil
	})
	if err != nil {
		return models.Job{}, err
	}

	s.audit.StudentApplied(ctx, applied, student.ID)
	return applied, nil
}

// AppliedStudents returns the applied snapshot of a job.
func (s *Service) AppliedStudents(ctx context.Context, p authz.Principal, jobID primitive.ObjectID) ([]models.StudentSnapshot, error) {
	job, err := s.loadJob(ctx, p, authz.ViewApplicants, jobID)
	if err != nil {
		return nil, err
	}
	if job.AppliedStudents == nil {
		return []models.StudentSnapshot{}, nil
	}
	return job.AppliedStudents, nil
}
