// internal/app/placement/views.go
package placement

import (
	"context"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/domain/rounds"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoundStatus is a student's outcome in one round.
type RoundStatus struct {
	RoundID  primitive.ObjectID `json:"round_id"`
	Index    int                `json:"index"`
	Name     string             `json:"name"`
	DateTime *time.Time         `json:"date_time,omitempty"`
	Status   rounds.Outcome     `json:"status"`
}

// Application is one job a student applied to, as the student sees it.
type Application struct {
	JobID         primitive.ObjectID `json:"job_id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Company       string             `json:"company"`
	Location      string             `json:"location"`
	Type          string             `json:"type"`
	JobDate       time.Time          `json:"job_date"`
	Logo          string             `json:"logo,omitempty"`
	CreatedByName string             `json:"created_by_name,omitempty"`
	AppliedOn     *time.Time         `json:"applied_on,omitempty"`
	Rounds        []RoundStatus      `json:"rounds"`
	Placement     *models.Placement  `json:"placement,omitempty"`
}

// Notification is one (job, round) status line in a student's feed.
type Notification struct {
	JobID       primitive.ObjectID `json:"job_id"`
	JobTitle    string             `json:"job_title"`
	Description string             `json:"description"`
	Company     string             `json:"company"`
	Location    string             `json:"location"`
	Type        string             `json:"type"`
	JobDate     time.Time          `json:"job_date"`
	Logo        string             `json:"logo,omitempty"`

	RoundID       primitive.ObjectID `json:"round_id"`
	RoundIndex    int                `json:"round_index"`
	RoundName     string             `json:"round_name"`
	RoundDateTime *time.Time         `json:"round_date_time,omitempty"`
	Status        rounds.Outcome     `json:"status"`
}

// AppliedJobs lists every job the calling student applied to with the
// per-round status and the placement, if any. Placements are read from
// the job, which is authoritative.
func (s *Service) AppliedJobs(ctx context.Context, p authz.Principal) ([]Application, error) {
	if err := require(p, authz.ViewOwnApplications); err != nil {
		return nil, err
	}
	student, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		return nil, storeErr(err, "load student")
	}
	jobs, err := s.jobs.ListAppliedBy(ctx, p.UserID)
	if err != nil {
		return nil, storeErr(err, "list applied jobs")
	}
	creators, err := s.creatorNames(ctx, jobs)
	if err != nil {
		return nil, err
	}

	out := make([]Application, 0, len(jobs))
	for _, job := range jobs {
		a := Application{
			JobID:         job.ID,
			Title:         job.Title,
			Description:   job.Description,
			Company:       job.Company,
			Location:      job.Location,
			Type:          job.Type,
			JobDate:       job.JobDate,
			Logo:          job.Logo,
			CreatedByName: creators[job.CreatedBy],
			Rounds:        statuses(job, p.UserID),
		}
		if h, ok := student.History(job.ID); ok {
			appliedOn := h.AppliedOn
			a.AppliedOn = &appliedOn
		}
		if pl, ok := job.PlacementFor(p.UserID); ok {
			a.Placement = &pl
		}
		out = append(out, a)
	}
	return out, nil
}

// Notifications flattens the round statuses of every applied job into
// one feed. It is recomputed on each call.
func (s *Service) Notifications(ctx context.Context, p authz.Principal) ([]Notification, error) {
	if err := require(p, authz.ViewOwnApplications); err != nil {
		return nil, err
	}
	jobs, err := s.jobs.ListAppliedBy(ctx, p.UserID)
	if err != nil {
		return nil, storeErr(err, "list applied jobs")
	}

	out := []Notification{}
	for _, job := range jobs {
		for _, rs := range statuses(job, p.UserID) {
			out = append(out, Notification{
				JobID:         job.ID,
				JobTitle:      job.Title,
				Description:   job.Description,
				Company:       job.Company,
				Location:      job.Location,
				Type:          job.Type,
				JobDate:       job.JobDate,
				Logo:          job.Logo,
				RoundID:       rs.RoundID,
				RoundIndex:    rs.Index,
				RoundName:     rs.Name,
				RoundDateTime: rs.DateTime,
				Status:        rs.Status,
			})
		}
	}
	return out, nil
}

func statuses(job models.Job, studentID primitive.ObjectID) []RoundStatus {
	out := make([]RoundStatus, 0, len(job.Rounds))
	for _, r := range job.Rounds {
		out = append(out, RoundStatus{
			RoundID:  r.ID,
			Index:    r.Index,
			Name:     r.Name,
			DateTime: r.DateTime,
			Status:   rounds.StatusOf(r, studentID),
		})
	}
	return out
}

func (s *Service) creatorNames(ctx context.Context, jobs []models.Job) (map[primitive.ObjectID]string, error) {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, j := range jobs {
		if !j.CreatedBy.IsZero() && !seen[j.CreatedBy] {
			seen[j.CreatedBy] = true
			ids = append(ids, j.CreatedBy)
		}
	}
	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr(err, "load job creators")
	}
	names := make(map[primitive.ObjectID]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}
