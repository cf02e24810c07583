// internal/app/placement/jobs.go
package placement

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/assets"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/placementhub/internal/app/system/normalize"
	"github.com/dalemusser/placementhub/internal/app/system/txn"
	"github.com/dalemusser/placementhub/internal/domain/eligibility"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// JobInput is the admin-supplied part of a new job.
type JobInput struct {
	Title       string
	Description string
	Company     string
	Location    string
	Type        string
	JobDate     time.Time
	Criteria    models.EligibilityCriteria
}

// NormalizeCriteria trims and de-duplicates the set-valued criteria and
// the equality fields.
func NormalizeCriteria(c models.EligibilityCriteria) models.EligibilityCriteria {
	c.Branches = normalize.List(c.Branches)
	c.Genders = normalize.List(c.Genders)
	c.Sessions = normalize.List(c.Sessions)
	c.Year = strings.TrimSpace(c.Year)
	c.Semester = strings.TrimSpace(c.Semester)
	return c
}

// PreviewEligible evaluates criteria against the caller's institution
// without storing anything.
func (s *Service) PreviewEligible(ctx context.Context, p authz.Principal, criteria models.EligibilityCriteria) ([]models.StudentSnapshot, error) {
	if err := require(p, authz.PreviewEligible); err != nil {
		return nil, err
	}
	criteria = NormalizeCriteria(criteria)
	if err := eligibility.Validate(criteria); err != nil {
		return nil, err
	}
	return s.eligibleFor(ctx, criteria, p.InstitutionID)
}

func (s *Service) eligibleFor(ctx context.Context, criteria models.EligibilityCriteria, institutionID primitive.ObjectID) ([]models.StudentSnapshot, error) {
	pool, err := s.users.StudentsByInstitution(ctx, institutionID)
	if err != nil {
		return nil, storeErr(err, "load students")
	}
	return eligibility.Evaluate(criteria, institutionID, pool), nil
}

// CreateJob stores a new job with the eligible pool computed now.
func (s *Service) CreateJob(ctx context.Context, p authz.Principal, in JobInput) (models.Job, error) {
	if err := require(p, authz.CreateJob); err != nil {
		return models.Job{}, err
	}

	job := models.Job{
		Title:               normalize.Name(in.Title),
		Description:         htmlsanitize.Description(in.Description),
		Company:             normalize.Name(in.Company),
		Location:            strings.TrimSpace(in.Location),
		Type:                normalize.JobType(in.Type),
		JobDate:             in.JobDate.UTC(),
		InstitutionID:       p.InstitutionID,
		CreatedBy:           p.UserID,
		EligibilityCriteria: NormalizeCriteria(in.Criteria),
	}

	fields := map[string]string{}
	if job.Title == "" {
		fields["title"] = "is required"
	}
	if job.Company == "" {
		fields["company"] = "is required"
	}
	if job.Type != models.JobTypeJob && job.Type != models.JobTypeInternship {
		fields["type"] = `must be "job" or "internship"`
	}
	if in.JobDate.IsZero() {
		fields["job_date"] = "is required"
	}
	if len(fields) > 0 {
		return models.Job{}, apperr.Validation("invalid job", fields)
	}
	if err := eligibility.Validate(job.EligibilityCriteria); err != nil {
		return models.Job{}, err
	}

	eligible, err := s.eligibleFor(ctx, job.EligibilityCriteria, p.InstitutionID)
	if err != nil {
		return models.Job{}, err
	}
	job.EligibleStudents = eligible

	created, err := s.jobs.Create(ctx, job)
	if err != nil {
		return models.Job{}, storeErr(err, "create job")
	}
	s.audit.JobCreated(ctx, p.UserID, created)
	return created, nil
}

// ListJobs returns the jobs of the caller's institution.
func (s *Service) ListJobs(ctx context.Context, p authz.Principal) ([]models.Job, error) {
	if err := require(p, authz.ListJobs); err != nil {
		return nil, err
	}
	jobs, err := s.jobs.ListByInstitution(ctx, p.InstitutionID)
	if err != nil {
		return nil, storeErr(err, "list jobs")
	}
	return jobs, nil
}

// ListEligibleJobs returns the jobs a student may still apply to.
func (s *Service) ListEligibleJobs(ctx context.Context, p authz.Principal) ([]models.Job, error) {
	if err := require(p, authz.ListEligibleJobs); err != nil {
		return nil, err
	}
	jobs, err := s.jobs.ListEligibleFor(ctx, p.UserID)
	if err != nil {
		return nil, storeErr(err, "list jobs")
	}
	return jobs, nil
}

func (s *Service) GetJob(ctx context.Context, p authz.Principal, jobID primitive.ObjectID) (models.Job, error) {
	return s.loadJob(ctx, p, authz.ViewJob, jobID)
}

// DeleteJob removes a job together with its rounds and placements and
// pulls it from every student's application history.
func (s *Service) DeleteJob(ctx context.Context, p authz.Principal, jobID primitive.ObjectID) error {
	var job models.Job
	var removed int64
	err := s.retryOnConflict(ctx, "delete job", jobID, func() error {
		var err error
		job, err = s.loadJob(ctx, p, authz.DeleteJob, jobID)
		if err != nil {
			return err
		}
		histories, err := s.users.HistoriesForJob(ctx, jobID)
		if err != nil {
			return storeErr(err, "load application histories")
		}

		err = txn.RunSteps(ctx, s.db, s.log,
			txn.Step{
				Name: "delete job",
				Do:   func(ctx context.Context) error { return s.jobs.Delete(ctx, jobID, job.Version) },
				Undo: func(ctx context.Context) error { return s.jobs.Reinsert(ctx, job) },
			},
			txn.Step{
				Name: "pull application histories",
				Do: func(ctx context.Context) error {
					var err error
					removed, err = s.users.PullJobFromHistories(ctx, jobID)
					return err
				},
				Undo: func(ctx context.Context) error { return s.users.RestoreHistories(ctx, histories) },
			},
		)
		return storeErr(err, "delete job")
	})
	if err != nil {
		return err
	}

	s.deleteAsset(ctx, job.LogoPath)
	s.audit.JobDeleted(ctx, p.UserID, job, removed)
	return nil
}

// UpdateLogo stores a new logo for the job and removes the previous one
// once the job points at the new asset.
func (s *Service) UpdateLogo(ctx context.Context, p authz.Principal, jobID primitive.ObjectID, filename string, r io.Reader) (models.Job, error) {
	if _, err := s.loadJob(ctx, p, authz.UpdateLogo, jobID); err != nil {
		return models.Job{}, err
	}
	if s.assets == nil {
		return models.Job{}, apperr.Dependency("logo storage is not configured", nil)
	}

	up, err := assets.PutLogo(ctx, s.assets, filename, r)
	if err != nil {
		return models.Job{}, err
	}

	var saved models.Job
	var previous string
	err = s.retryOnConflict(ctx, "update logo", jobID, func() error {
		job, err := s.loadJob(ctx, p, authz.UpdateLogo, jobID)
		if err != nil {
			return err
		}
		next := job.Clone()
		next.Logo = up.URL
		next.LogoPath = up.Path
		saved, err = s.jobs.Replace(ctx, next)
		if err != nil {
			return storeErr(err, "update job")
		}
		previous = job.LogoPath
		return nil
	})
	if err != nil {
		s.deleteAsset(ctx, up.Path)
		return models.Job{}, err
	}

	if previous != up.Path {
		s.deleteAsset(ctx, previous)
	}
	s.audit.LogoUpdated(ctx, p.UserID, saved)
	return saved, nil
}

// deleteAsset removes a stored asset. Failures are logged only.
func (s *Service) deleteAsset(ctx context.Context, path string) {
	if path == "" || s.assets == nil {
		return
	}
	err := s.assets.Delete(context.WithoutCancel(ctx), path)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.Warn("failed to delete asset", zap.String("path", path), zap.Error(err))
	}
}
