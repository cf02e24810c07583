// internal/app/placement/service.go
//
// Package placement runs the job lifecycle: posting a job with its
// computed eligible pool, applications, interview rounds, placements and
// the student-facing views derived from them. Every operation takes the
// calling principal and asks authz before touching data.
package placement

import (
	"context"
	"errors"
	"time"

	jobstore "github.com/dalemusser/placementhub/internal/app/store/jobs"
	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/notify"
	"github.com/dalemusser/placementhub/internal/app/system/ratelimit"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const defaultWriteAttempts = 5

// Config holds the policy knobs of the service.
type Config struct {
	// LockRoundResults makes a round immutable once results are recorded.
	LockRoundResults bool
	// WriteAttempts bounds retries after a job version conflict.
	WriteAttempts int
}

// Deps are the collaborators of the service. Audit, Notifier, Assets and
// ApplyLimiter may be nil.
type Deps struct {
	DB           *mongo.Database
	Log          *zap.Logger
	Audit        *auditlog.Logger
	Notifier     notify.Notifier
	Assets       storage.Store
	ApplyLimiter *ratelimit.Limiter
}

// Service implements the placement operations over the jobs and users
// collections.
type Service struct {
	db       *mongo.Database
	jobs     *jobstore.Store
	users    *userstore.Store
	log      *zap.Logger
	audit    *auditlog.Logger
	notifier notify.Notifier
	assets   storage.Store
	limiter  *ratelimit.Limiter
	cfg      Config
}

func New(deps Deps, cfg Config) *Service {
	if cfg.WriteAttempts <= 0 {
		cfg.WriteAttempts = defaultWriteAttempts
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		db:       deps.DB,
		jobs:     jobstore.New(deps.DB),
		users:    userstore.New(deps.DB),
		log:      log,
		audit:    deps.Audit,
		notifier: deps.Notifier,
		assets:   deps.Assets,
		limiter:  deps.ApplyLimiter,
		cfg:      cfg,
	}
}

// loadJob reads a job and checks that p may perform a on it.
func (s *Service) loadJob(ctx context.Context, p authz.Principal, a authz.Action, jobID primitive.ObjectID) (models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return models.Job{}, storeErr(err, "load job")
	}
	if !authz.Can(p, a, authz.JobResource(job)) {
		return models.Job{}, apperr.Authorization("you do not have access to this job")
	}
	return job, nil
}

func require(p authz.Principal, a authz.Action) error {
	if !authz.Can(p, a, authz.Resource{InstitutionID: p.InstitutionID}) {
		return apperr.Authorization("you do not have access to this resource")
	}
	return nil
}

// retryOnConflict runs fn until it stops failing with a job version
// conflict or the attempts run out. fn must re-read the job each time.
func (s *Service) retryOnConflict(ctx context.Context, op string, jobID primitive.ObjectID, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.cfg.WriteAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, jobstore.ErrVersionConflict) {
			return err
		}
		if ctx.Err() != nil {
			break
		}
		s.log.Debug("job version conflict; retrying",
			zap.String("op", op),
			zap.String("job_id", jobID.Hex()),
			zap.Int("attempt", attempt))
	}
	return &apperr.Error{
		Kind:    apperr.KindConflict,
		Message: "the job was changed by another request; try again",
		Err:     err,
	}
}

// revertJob undoes a committed job write by applying undo to the job as
// it is now, so writes that landed in between survive. A job that is gone
// needs no revert.
func (s *Service) revertJob(ctx context.Context, jobID primitive.ObjectID, undo func(*models.Job) bool) error {
	var err error
	for attempt := 1; attempt <= s.cfg.WriteAttempts; attempt++ {
		var job models.Job
		job, err = s.jobs.GetByID(ctx, jobID)
		if errors.Is(err, jobstore.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		next := job.Clone()
		if !undo(&next) {
			return nil
		}
		_, err = s.jobs.Replace(ctx, next)
		if errors.Is(err, jobstore.ErrNotFound) {
			return nil
		}
		if !errors.Is(err, jobstore.ErrVersionConflict) {
			return err
		}
	}
	return err
}

// storeErr translates store sentinels into the error taxonomy. Version
// conflicts pass through so retryOnConflict can see them.
func storeErr(err error, what string) error {
	var ae *apperr.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ae):
		return err
	case errors.Is(err, jobstore.ErrVersionConflict):
		return err
	case errors.Is(err, jobstore.ErrNotFound):
		return apperr.NotFound("job not found")
	case errors.Is(err, userstore.ErrNotFound):
		return apperr.NotFound("student not found")
	default:
		return apperr.Dependency("failed to "+what, err)
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
