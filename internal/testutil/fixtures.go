// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Calling it again on the same request adds to the existing route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, _ := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// StudentOpts customizes CreateStudent. Zero values get defaults.
type StudentOpts struct {
	FirstName string
	LastName  string
	Branch    string
	Semester  string
	Year      string
	Session   string
	Gender    string
	CGPA      []float64
	Tenth     *float64
	Twelfth   *float64
	Backlogs  int
	Disabled  bool
}

// CreateStudent inserts an active student in institutionID.
func (f *Fixtures) CreateStudent(ctx context.Context, institutionID primitive.ObjectID, opts StudentOpts) models.User {
	f.t.Helper()

	if opts.FirstName == "" {
		opts.FirstName = "Test"
	}
	if opts.LastName == "" {
		opts.LastName = "Student"
	}
	if opts.Branch == "" {
		opts.Branch = "Computer"
	}

	records := models.AcademicRecords{
		Tenth:    models.SchoolRecord{Percentage: opts.Tenth},
		Twelfth:  models.SchoolRecord{Percentage: opts.Twelfth},
		CGPA:     []models.SemesterCGPA{},
		Backlogs: []models.BacklogRecord{},
	}
	for i, g := range opts.CGPA {
		records.CGPA = append(records.CGPA, models.SemesterCGPA{Semester: semesterName(i), CGPA: g})
	}
	if opts.Backlogs > 0 {
		records.Backlogs = append(records.Backlogs, models.BacklogRecord{Semester: semesterName(0), Count: opts.Backlogs})
	}

	id := primitive.NewObjectID()
	name := opts.FirstName + " " + opts.LastName
	status := models.StatusActive
	if opts.Disabled {
		status = models.StatusDisabled
	}
	now := time.Now().UTC()
	inst := institutionID
	u := models.User{
		ID:            id,
		Name:          name,
		NameCI:        text.Fold(name),
		Email:         id.Hex() + "@students.test",
		Role:          models.RoleStudent,
		Status:        status,
		InstitutionID: &inst,
		Profile: &models.StudentProfile{
			FirstName:          opts.FirstName,
			LastName:           opts.LastName,
			Branch:             opts.Branch,
			Semester:           opts.Semester,
			Year:               opts.Year,
			Session:            opts.Session,
			Gender:             opts.Gender,
			AcademicRecords:    records,
			AppliedJobsHistory: []models.ApplicationHistoryEntry{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test student: %v", err)
	}
	return u
}

// CreateAdmin inserts an institution admin for institutionID.
func (f *Fixtures) CreateAdmin(ctx context.Context, institutionID primitive.ObjectID, name string) models.User {
	f.t.Helper()

	id := primitive.NewObjectID()
	now := time.Now().UTC()
	inst := institutionID
	u := models.User{
		ID:            id,
		Name:          name,
		NameCI:        text.Fold(name),
		Email:         id.Hex() + "@admins.test",
		Role:          models.RoleInstitutionAdmin,
		Status:        models.StatusActive,
		InstitutionID: &inst,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test admin: %v", err)
	}
	return u
}

// CreateJob inserts job as given, filling identity, timestamps and empty
// collections. Eligible and applied snapshots are stored verbatim.
func (f *Fixtures) CreateJob(ctx context.Context, job models.Job) models.Job {
	f.t.Helper()

	now := time.Now().UTC()
	if job.ID.IsZero() {
		job.ID = primitive.NewObjectID()
	}
	if job.Title == "" {
		job.Title = "Software Engineer"
	}
	if job.Company == "" {
		job.Company = "Acme"
	}
	if job.Type == "" {
		job.Type = models.JobTypeJob
	}
	if job.JobDate.IsZero() {
		job.JobDate = now.Truncate(time.Millisecond)
	}
	job.TitleCI = text.Fold(job.Title)
	job.CompanyCI = text.Fold(job.Company)
	if job.EligibleStudents == nil {
		job.EligibleStudents = []models.StudentSnapshot{}
	}
	if job.AppliedStudents == nil {
		job.AppliedStudents = []models.StudentSnapshot{}
	}
	if job.Rounds == nil {
		job.Rounds = []models.Round{}
	}
	if job.Placements == nil {
		job.Placements = []models.Placement{}
	}
	job.TotalApplications = len(job.AppliedStudents)
	job.Version = 1
	job.CreatedAt = now
	job.UpdatedAt = now

	if _, err := f.db.Collection("jobs").InsertOne(ctx, job); err != nil {
		f.t.Fatalf("failed to create test job: %v", err)
	}
	return job
}

// Snapshot mirrors the eligibility snapshot of a student.
func Snapshot(u models.User) models.StudentSnapshot {
	s := models.StudentSnapshot{StudentID: u.ID}
	if u.Profile != nil {
		s.FirstName = u.Profile.FirstName
		s.LastName = u.Profile.LastName
		s.Branch = u.Profile.Branch
		s.Semester = u.Profile.Semester
	}
	return s
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

func semesterName(i int) string {
	return []string{"Sem1", "Sem2", "Sem3", "Sem4", "Sem5", "Sem6", "Sem7", "Sem8"}[i%8]
}
