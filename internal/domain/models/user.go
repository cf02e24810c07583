// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles stored on User.Role.
const (
	RoleStudent          = "student"
	RoleInstitutionAdmin = "institution_admin"
	RoleGlobalAdmin      = "global_admin"
)

// User statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// User represents students and admins. Only students carry a Profile.
type User struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name          string              `bson:"name" json:"name"`
	NameCI        string              `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Email         string              `bson:"email" json:"email"`
	Role          string              `bson:"role" json:"role"` // student | institution_admin | global_admin
	Status        string              `bson:"status,omitempty" json:"status,omitempty"`
	InstitutionID *primitive.ObjectID `bson:"institution_id,omitempty" json:"institution_id,omitempty"`

	Profile *StudentProfile `bson:"profile,omitempty" json:"profile,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// StudentProfile holds the academic data eligibility is computed from and
// the student's own mirror of their applications.
type StudentProfile struct {
	FirstName  string `bson:"first_name" json:"first_name"`
	LastName   string `bson:"last_name" json:"last_name"`
	Branch     string `bson:"branch" json:"branch"`
	Semester   string `bson:"semester,omitempty" json:"semester,omitempty"`
	Year       string `bson:"year,omitempty" json:"year,omitempty"`
	Session    string `bson:"session,omitempty" json:"session,omitempty"` // e.g. "2024-2025"
	Gender     string `bson:"gender,omitempty" json:"gender,omitempty"`
	ProfilePic string `bson:"profile_pic,omitempty" json:"profile_pic,omitempty"`

	AcademicRecords AcademicRecords `bson:"academic_records" json:"academic_records"`

	AppliedJobsHistory []ApplicationHistoryEntry `bson:"applied_jobs_history" json:"applied_jobs_history"`
}

// AcademicRecords are the scores a student reports. Nil means not reported.
type AcademicRecords struct {
	Tenth       SchoolRecord    `bson:"tenth" json:"tenth"`
	Twelfth     SchoolRecord    `bson:"twelfth" json:"twelfth"`
	Diploma     SchoolRecord    `bson:"diploma" json:"diploma"`
	JEEScore    *float64        `bson:"jee_score,omitempty" json:"jee_score,omitempty"`
	MHTCETScore *float64        `bson:"mht_cet_score,omitempty" json:"mht_cet_score,omitempty"`
	CGPA        []SemesterCGPA  `bson:"cgpa" json:"cgpa"`
	Backlogs    []BacklogRecord `bson:"backlogs" json:"backlogs"`
}

type SchoolRecord struct {
	Institution string   `bson:"institution,omitempty" json:"institution,omitempty"`
	Percentage  *float64 `bson:"percentage,omitempty" json:"percentage,omitempty"`
}

type SemesterCGPA struct {
	Semester string  `bson:"semester" json:"semester"`
	CGPA     float64 `bson:"cgpa" json:"cgpa"`
}

type BacklogRecord struct {
	Semester string `bson:"semester" json:"semester"`
	Count    int    `bson:"count" json:"count"`
}

// CurrentBacklogs sums backlog counts across all semesters.
func (a AcademicRecords) CurrentBacklogs() int {
	total := 0
	for _, b := range a.Backlogs {
		total += b.Count
	}
	return total
}

// ApplicationHistoryEntry mirrors one application on the student record.
// Job placements are authoritative; this copy is kept in sync by the
// placement ledger.
type ApplicationHistoryEntry struct {
	JobID     primitive.ObjectID `bson:"job_id" json:"job_id"`
	AppliedOn time.Time          `bson:"applied_on" json:"applied_on"`
	Placement *PlacementRecord   `bson:"placement,omitempty" json:"placement,omitempty"`
}

type PlacementRecord struct {
	PackageAmount float64   `bson:"package_amount" json:"package_amount"`
	PlacedOn      time.Time `bson:"placed_on" json:"placed_on"`
}

// IsStudent reports whether u is an active student.
func (u User) IsStudent() bool {
	return u.Role == RoleStudent && u.Status != StatusDisabled
}

// History returns the application history entry for jobID, if any.
func (u User) History(jobID primitive.ObjectID) (ApplicationHistoryEntry, bool) {
	if u.Profile == nil {
		return ApplicationHistoryEntry{}, false
	}
	for _, h := range u.Profile.AppliedJobsHistory {
		if h.JobID == jobID {
			return h, true
		}
	}
	return ApplicationHistoryEntry{}, false
}
