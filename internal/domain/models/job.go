// internal/domain/models/job.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Posting types.
const (
	JobTypeJob        = "job"
	JobTypeInternship = "internship"
)

// Job is one posting by one institution. The whole document is read and
// written as a unit; Version guards concurrent writers.
type Job struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	TitleCI       string             `bson:"title_ci" json:"-"`
	Description   string             `bson:"description" json:"description"`
	Company       string             `bson:"company" json:"company"`
	CompanyCI     string             `bson:"company_ci" json:"-"`
	Location      string             `bson:"location" json:"location"`
	Type          string             `bson:"type" json:"type"` // job | internship
	JobDate       time.Time          `bson:"job_date" json:"job_date"`
	InstitutionID primitive.ObjectID `bson:"institution_id" json:"institution_id"`
	CreatedBy     primitive.ObjectID `bson:"created_by" json:"created_by"`

	EligibilityCriteria EligibilityCriteria `bson:"eligibility_criteria" json:"eligibility_criteria"`

	EligibleStudents  []StudentSnapshot `bson:"eligible_students" json:"eligible_students"`
	AppliedStudents   []StudentSnapshot `bson:"applied_students" json:"applied_students"`
	TotalApplications int               `bson:"total_applications" json:"total_applications"`

	Rounds     []Round     `bson:"rounds" json:"rounds"`
	Placements []Placement `bson:"placements" json:"placements"`

	Logo     string `bson:"logo,omitempty" json:"logo,omitempty"`
	LogoPath string `bson:"logo_path,omitempty" json:"-"` // storage key behind Logo

	Version   int64     `bson:"version" json:"version"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// EligibilityCriteria is a conjunction of optional constraints. A nil or
// empty field imposes no constraint.
type EligibilityCriteria struct {
	Branches       []string `bson:"branches,omitempty" json:"branches,omitempty"`
	Genders        []string `bson:"genders,omitempty" json:"genders,omitempty"`
	Sessions       []string `bson:"sessions,omitempty" json:"sessions,omitempty"`
	Year           string   `bson:"year,omitempty" json:"year,omitempty"`
	Semester       string   `bson:"semester,omitempty" json:"semester,omitempty"`
	MinCGPA        *float64 `bson:"min_cgpa,omitempty" json:"min_cgpa,omitempty"`
	MinTenth       *float64 `bson:"min_tenth_percentage,omitempty" json:"min_tenth_percentage,omitempty"`
	MinTwelfth     *float64 `bson:"min_twelfth_percentage,omitempty" json:"min_twelfth_percentage,omitempty"`
	MinDiploma     *float64 `bson:"min_diploma_percentage,omitempty" json:"min_diploma_percentage,omitempty"`
	MinJEEScore    *float64 `bson:"min_jee_score,omitempty" json:"min_jee_score,omitempty"`
	MinMHTCETScore *float64 `bson:"min_mht_cet_score,omitempty" json:"min_mht_cet_score,omitempty"`
	MaxBacklogs    *int     `bson:"max_backlogs,omitempty" json:"max_backlogs,omitempty"`
}

// StudentSnapshot is the denormalized view of a student stored on a Job.
type StudentSnapshot struct {
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name" json:"last_name"`
	Branch    string             `bson:"branch" json:"branch"`
	Semester  string             `bson:"semester,omitempty" json:"semester,omitempty"`
}

// Round is one stage of the interview pipeline. The three result sets are
// disjoint; all empty means results are pending.
type Round struct {
	ID                  primitive.ObjectID   `bson:"_id" json:"id"`
	Index               int                  `bson:"index" json:"index"`
	Name                string               `bson:"name" json:"name"`
	DateTime            *time.Time           `bson:"date_time,omitempty" json:"date_time,omitempty"`
	QualifiedStudents   []primitive.ObjectID `bson:"qualified_students" json:"qualified_students"`
	UnqualifiedStudents []primitive.ObjectID `bson:"unqualified_students" json:"unqualified_students"`
	AbsentStudents      []primitive.ObjectID `bson:"absent_students" json:"absent_students"`
	Resolved            bool                 `bson:"resolved" json:"resolved"`
	ResolvedAt          *time.Time           `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
}

// Participants returns every student with a recorded result in r.
func (r Round) Participants() []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(r.QualifiedStudents)+len(r.UnqualifiedStudents)+len(r.AbsentStudents))
	out = append(out, r.QualifiedStudents...)
	out = append(out, r.UnqualifiedStudents...)
	out = append(out, r.AbsentStudents...)
	return out
}

// Placement records a final offer. At most one per student per job.
type Placement struct {
	StudentID     primitive.ObjectID `bson:"student_id" json:"student_id"`
	PackageAmount float64            `bson:"package_amount" json:"package_amount"`
	PlacedOn      time.Time          `bson:"placed_on" json:"placed_on"`
}

// IsEligible reports whether studentID is in the eligible snapshot.
func (j *Job) IsEligible(studentID primitive.ObjectID) bool {
	return indexOfSnapshot(j.EligibleStudents, studentID) >= 0
}

// HasApplied reports whether studentID is in the applied snapshot.
func (j *Job) HasApplied(studentID primitive.ObjectID) bool {
	return indexOfSnapshot(j.AppliedStudents, studentID) >= 0
}

// MoveToApplied removes studentID from the eligible snapshot, appends snap
// to the applied snapshot and keeps TotalApplications in step.
func (j *Job) MoveToApplied(snap StudentSnapshot) {
	if i := indexOfSnapshot(j.EligibleStudents, snap.StudentID); i >= 0 {
		j.EligibleStudents = append(j.EligibleStudents[:i:i], j.EligibleStudents[i+1:]...)
	}
	j.AppliedStudents = append(j.AppliedStudents, snap)
	j.TotalApplications = len(j.AppliedStudents)
}

// EligibleEntry returns the eligible snapshot of studentID, if listed.
func (j *Job) EligibleEntry(studentID primitive.ObjectID) (StudentSnapshot, bool) {
	if i := indexOfSnapshot(j.EligibleStudents, studentID); i >= 0 {
		return j.EligibleStudents[i], true
	}
	return StudentSnapshot{}, false
}

// UndoApply reverses MoveToApplied: the student leaves the applied
// snapshot and eligible goes back to the eligible snapshot. It reports
// whether j changed.
func (j *Job) UndoApply(eligible StudentSnapshot) bool {
	i := indexOfSnapshot(j.AppliedStudents, eligible.StudentID)
	if i < 0 {
		return false
	}
	j.AppliedStudents = append(j.AppliedStudents[:i:i], j.AppliedStudents[i+1:]...)
	if !j.IsEligible(eligible.StudentID) {
		j.EligibleStudents = append(j.EligibleStudents, eligible)
	}
	j.TotalApplications = len(j.AppliedStudents)
	return true
}

// RemovePlacement drops the placement for studentID and reports whether
// there was one.
func (j *Job) RemovePlacement(studentID primitive.ObjectID) bool {
	for i, p := range j.Placements {
		if p.StudentID == studentID {
			j.Placements = append(j.Placements[:i:i], j.Placements[i+1:]...)
			return true
		}
	}
	return false
}

// PlacementFor returns the placement for studentID, if recorded.
func (j *Job) PlacementFor(studentID primitive.ObjectID) (Placement, bool) {
	for _, p := range j.Placements {
		if p.StudentID == studentID {
			return p, true
		}
	}
	return Placement{}, false
}

// RoundByID returns the position of the round with id in j.Rounds, or -1.
func (j *Job) RoundByID(id primitive.ObjectID) int {
	for i := range j.Rounds {
		if j.Rounds[i].ID == id {
			return i
		}
	}
	return -1
}

// RoundByIndex returns the round with the given 1-based index.
func (j *Job) RoundByIndex(index int) (Round, bool) {
	for _, r := range j.Rounds {
		if r.Index == index {
			return r, true
		}
	}
	return Round{}, false
}

// NextRoundIndex is one past the highest index ever assigned.
func (j *Job) NextRoundIndex() int {
	highest := 0
	for _, r := range j.Rounds {
		if r.Index > highest {
			highest = r.Index
		}
	}
	return highest + 1
}

// Clone returns a copy of j that shares no slices with it.
func (j Job) Clone() Job {
	c := j
	c.EligibilityCriteria.Branches = cloneSlice(j.EligibilityCriteria.Branches)
	c.EligibilityCriteria.Genders = cloneSlice(j.EligibilityCriteria.Genders)
	c.EligibilityCriteria.Sessions = cloneSlice(j.EligibilityCriteria.Sessions)
	c.EligibleStudents = cloneSlice(j.EligibleStudents)
	c.AppliedStudents = cloneSlice(j.AppliedStudents)
	c.Placements = cloneSlice(j.Placements)
	if j.Rounds != nil {
		c.Rounds = make([]Round, len(j.Rounds))
		for i, r := range j.Rounds {
			r.QualifiedStudents = cloneSlice(r.QualifiedStudents)
			r.UnqualifiedStudents = cloneSlice(r.UnqualifiedStudents)
			r.AbsentStudents = cloneSlice(r.AbsentStudents)
			c.Rounds[i] = r
		}
	}
	return c
}

func indexOfSnapshot(list []StudentSnapshot, id primitive.ObjectID) int {
	for i, s := range list {
		if s.StudentID == id {
			return i
		}
	}
	return -1
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
