// internal/domain/eligibility/eligibility.go
//
// Package eligibility decides which students of an institution satisfy a
// job's criteria. Everything here is pure: callers supply the candidate
// pool and get back snapshots in pool order.
package eligibility

import (
	"math"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Predicate reports whether a single student satisfies compiled criteria.
type Predicate func(u models.User) bool

// Validate rejects thresholds that are negative, NaN or infinite.
func Validate(c models.EligibilityCriteria) error {
	fields := map[string]string{}
	check := func(name string, v *float64) {
		if v == nil {
			return
		}
		switch {
		case math.IsNaN(*v) || math.IsInf(*v, 0):
			fields[name] = "must be a finite number"
		case *v < 0:
			fields[name] = "must not be negative"
		}
	}
	check("min_cgpa", c.MinCGPA)
	check("min_tenth_percentage", c.MinTenth)
	check("min_twelfth_percentage", c.MinTwelfth)
	check("min_diploma_percentage", c.MinDiploma)
	check("min_jee_score", c.MinJEEScore)
	check("min_mht_cet_score", c.MinMHTCETScore)
	if c.MaxBacklogs != nil && *c.MaxBacklogs < 0 {
		fields["max_backlogs"] = "must not be negative"
	}
	if len(fields) > 0 {
		return apperr.Validation("invalid eligibility criteria", fields)
	}
	return nil
}

// Compile builds the conjunction of every constraint present in c, scoped
// to active students of institutionID. Absent constraints add no clause,
// so dropping a field from c can only widen the result.
func Compile(c models.EligibilityCriteria, institutionID primitive.ObjectID) Predicate {
	clauses := []Predicate{
		func(u models.User) bool {
			return u.IsStudent() && u.Profile != nil &&
				u.InstitutionID != nil && *u.InstitutionID == institutionID
		},
	}

	if len(c.Branches) > 0 {
		set := stringSet(c.Branches)
		clauses = append(clauses, func(u models.User) bool { return set[u.Profile.Branch] })
	}
	if len(c.Genders) > 0 {
		set := stringSet(c.Genders)
		clauses = append(clauses, func(u models.User) bool { return set[u.Profile.Gender] })
	}
	if len(c.Sessions) > 0 {
		set := stringSet(c.Sessions)
		clauses = append(clauses, func(u models.User) bool { return set[u.Profile.Session] })
	}
	if c.Year != "" {
		year := c.Year
		clauses = append(clauses, func(u models.User) bool { return u.Profile.Year == year })
	}
	if c.Semester != "" {
		sem := c.Semester
		clauses = append(clauses, func(u models.User) bool { return u.Profile.Semester == sem })
	}

	if min, ok := threshold(c.MinCGPA); ok {
		// Existential over the semester history: one qualifying semester is enough.
		clauses = append(clauses, func(u models.User) bool {
			for _, s := range u.Profile.AcademicRecords.CGPA {
				if s.CGPA >= min {
					return true
				}
			}
			return false
		})
	}
	if min, ok := threshold(c.MinTenth); ok {
		clauses = append(clauses, func(u models.User) bool {
			return atLeast(u.Profile.AcademicRecords.Tenth.Percentage, min)
		})
	}
	if min, ok := threshold(c.MinTwelfth); ok {
		clauses = append(clauses, func(u models.User) bool {
			return atLeast(u.Profile.AcademicRecords.Twelfth.Percentage, min)
		})
	}
	if min, ok := threshold(c.MinDiploma); ok {
		clauses = append(clauses, func(u models.User) bool {
			return atLeast(u.Profile.AcademicRecords.Diploma.Percentage, min)
		})
	}
	if min, ok := threshold(c.MinJEEScore); ok {
		clauses = append(clauses, func(u models.User) bool {
			return atLeast(u.Profile.AcademicRecords.JEEScore, min)
		})
	}
	if min, ok := threshold(c.MinMHTCETScore); ok {
		clauses = append(clauses, func(u models.User) bool {
			return atLeast(u.Profile.AcademicRecords.MHTCETScore, min)
		})
	}
	if c.MaxBacklogs != nil {
		max := *c.MaxBacklogs
		clauses = append(clauses, func(u models.User) bool {
			return u.Profile.AcademicRecords.CurrentBacklogs() <= max
		})
	}

	return func(u models.User) bool {
		for _, clause := range clauses {
			if !clause(u) {
				return false
			}
		}
		return true
	}
}

// Evaluate returns snapshots of every student in pool matching c.
// The result preserves pool order and contains each student once.
func Evaluate(c models.EligibilityCriteria, institutionID primitive.ObjectID, pool []models.User) []models.StudentSnapshot {
	match := Compile(c, institutionID)
	seen := make(map[primitive.ObjectID]bool, len(pool))
	out := make([]models.StudentSnapshot, 0)
	for _, u := range pool {
		if seen[u.ID] || !match(u) {
			continue
		}
		seen[u.ID] = true
		out = append(out, Snapshot(u))
	}
	return out
}

// Snapshot builds the denormalized view of u stored on a job.
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

// threshold treats a zero minimum as no constraint.
func threshold(v *float64) (float64, bool) {
	if v == nil || *v <= 0 {
		return 0, false
	}
	return *v, true
}

func atLeast(v *float64, min float64) bool {
	return v != nil && *v >= min
}

func stringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
