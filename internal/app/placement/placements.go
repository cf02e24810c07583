// internal/app/placement/placements.go
package placement

import (
	"context"
	"errors"
	"math"
	"time"

	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/app/system/notify"
	"github.com/dalemusser/placementhub/internal/app/system/txn"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PlacementInput is an offer to record. PlacedOn defaults to now.
type PlacementInput struct {
	StudentID     primitive.ObjectID
	PackageAmount float64
	PlacedOn      *time.Time
}

// PlacementView is a placement joined with the student's profile.
type PlacementView struct {
	StudentID     primitive.ObjectID `json:"student_id"`
	FirstName     string             `json:"first_name"`
	LastName      string             `json:"last_name"`
	Email         string             `json:"email,omitempty"`
	Branch        string             `json:"branch"`
	Semester      string             `json:"semester,omitempty"`
	PackageAmount float64            `json:"package_amount"`
	PlacedOn      time.Time          `json:"placed_on"`
}

// AddPlacement records an offer on the job and mirrors it onto the
// student's history entry. The notification is queued only after both
// writes commit.
func (s *Service) AddPlacement(ctx context.Context, p authz.Principal, jobID primitive.ObjectID, in PlacementInput) (models.Placement, error) {
	if err := require(p, authz.AddPlacement); err != nil {
		return models.Placement{}, err
	}
	fields := map[string]string{}
	if in.StudentID.IsZero() {
		fields["student_id"] = "is required"
	}
	if math.IsNaN(in.PackageAmount) || math.IsInf(in.PackageAmount, 0) || in.PackageAmount <= 0 {
		fields["package_amount"] = "must be a positive number"
	}
	if len(fields) > 0 {
		return models.Placement{}, apperr.Validation("invalid placement", fields)
	}

	student, err := s.users.GetByID(ctx, in.StudentID)
	if err != nil {
		return models.Placement{}, storeErr(err, "load student")
	}
	if student.Role != models.RoleStudent {
		return models.Placement{}, apperr.Validation("invalid placement", map[string]string{"student_id": "is not a student"})
	}

	placedOn := now()
	if in.PlacedOn != nil && !in.PlacedOn.IsZero() {
		placedOn = in.PlacedOn.UTC()
	}
	placement := models.Placement{StudentID: student.ID, PackageAmount: in.PackageAmount, PlacedOn: placedOn}

	var saved models.Job
	err = s.retryOnConflict(ctx, "add placement", jobID, func() error {
		job, err := s.loadJob(ctx, p, authz.AddPlacement, jobID)
		if err != nil {
			return err
		}
		if !job.HasApplied(student.ID) {
			return apperr.Conflict("the student has not applied to this job")
		}
		if _, placed := job.PlacementFor(student.ID); placed {
			return apperr.Conflict("the student is already placed for this job")
		}

		next := job.Clone()
		next.Placements = append(next.Placements, placement)
		rec := models.PlacementRecord{PackageAmount: placement.PackageAmount, PlacedOn: placement.PlacedOn}

		var written models.Job
		err = txn.RunSteps(ctx, s.db, s.log,
			txn.Step{
				Name: "update job",
				Do: func(ctx context.Context) error {
					var err error
					written, err = s.jobs.Replace(ctx, next)
					return err
				},
				Undo: func(ctx context.Context) error {
					return s.revertJob(ctx, job.ID, func(j *models.Job) bool { return j.RemovePlacement(student.ID) })
				},
			},
			txn.Step{
				Name: "mirror placement",
				Do: func(ctx context.Context) error {
					err := s.users.SetPlacement(ctx, student.ID, job.ID, rec)
					if errors.Is(err, userstore.ErrHistoryMissing) {
						return apperr.Conflict("the student's application record does not allow a placement")
					}
					return err
				},
				Undo: func(ctx context.Context) error { return s.users.ClearPlacement(ctx, student.ID, job.ID) },
			},
		)
		if err != nil {
			return storeErr(err, "add placement")
		}
		saved = written
		return nil
	})
	if err != nil {
		return models.Placement{}, err
	}

	s.audit.PlacementAdded(ctx, p.UserID, saved, placement)
	s.queueNotice(saved, student, placement)
	return placement, nil
}

func (s *Service) queueNotice(job models.Job, student models.User, pl models.Placement) {
	if s.notifier == nil {
		return
	}
	n := notify.PlacementNotice{
		InstitutionID: job.InstitutionID,
		JobID:         job.ID,
		JobTitle:      job.Title,
		Company:       job.Company,
		Location:      job.Location,
		JobType:       job.Type,
		StudentID:     student.ID,
		StudentName:   student.Name,
		StudentEmail:  student.Email,
		PackageAmount: pl.PackageAmount,
		PlacedOn:      pl.PlacedOn,
	}
	if student.Profile != nil && student.Profile.FirstName != "" {
		n.StudentName = student.Profile.FirstName
	}
	if !s.notifier.Enqueue(n) {
		s.log.Warn("placement notice dropped",
			zap.String("job_id", job.ID.Hex()),
			zap.String("student_id", student.ID.Hex()))
	}
}

// PlacementsForJob returns the job's placements in the order they were
// recorded, each joined with the student's current profile.
func (s *Service) PlacementsForJob(ctx context.Context, p authz.Principal, jobID primitive.ObjectID) ([]PlacementView, error) {
	job, err := s.loadJob(ctx, p, authz.ViewPlacements, jobID)
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(job.Placements))
	for _, pl := range job.Placements {
		ids = append(ids, pl.StudentID)
	}
	students, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "load students")
	}
	byID := make(map[primitive.ObjectID]models.User, len(students))
	for _, u := range students {
		byID[u.ID] = u
	}

	out := make([]PlacementView, 0, len(job.Placements))
	for _, pl := range job.Placements {
		v := PlacementView{StudentID: pl.StudentID, PackageAmount: pl.PackageAmount, PlacedOn: pl.PlacedOn}
		if u, ok := byID[pl.StudentID]; ok {
			v.Email = u.Email
			if u.Profile != nil {
				v.FirstName = u.Profile.FirstName
				v.LastName = u.Profile.LastName
				v.Branch = u.Profile.Branch
				v.Semester = u.Profile.Semester
			}
		}
		out = append(out, v)
	}
	return out, nil
}
