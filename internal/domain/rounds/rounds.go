// internal/domain/rounds/rounds.go
//
// Package rounds holds the pure rules of the interview pipeline: creating
// ordered rounds, working out who may take part in a round, validating and
// recording results, and deriving a student's outcome.
package rounds

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/apperr"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxRoundsPerRequest caps how many rounds one create call may add.
const MaxRoundsPerRequest = 50

// Outcome is a student's result in one round.
type Outcome string

const (
	OutcomeQualified   Outcome = "Qualified"
	OutcomeUnqualified Outcome = "Not Qualified"
	OutcomeAbsent      Outcome = "Absent"
	OutcomePending     Outcome = "Pending"
)

func (o Outcome) String() string {
	return string(o)
}

// StatusOf derives studentID's outcome in r. Students with no recorded
// result are Pending.
func StatusOf(r models.Round, studentID primitive.ObjectID) Outcome {
	switch {
	case contains(r.QualifiedStudents, studentID):
		return OutcomeQualified
	case contains(r.UnqualifiedStudents, studentID):
		return OutcomeUnqualified
	case contains(r.AbsentStudents, studentID):
		return OutcomeAbsent
	default:
		return OutcomePending
	}
}

// Spec describes a round to be created.
type Spec struct {
	Name     string
	DateTime *time.Time
}

// Append adds rounds to job with consecutive indices after the highest
// index already assigned, and returns the rounds it created.
func Append(job *models.Job, specs []Spec) ([]models.Round, error) {
	if len(specs) == 0 {
		return nil, apperr.Validation("at least one round is required", map[string]string{"rounds": "must not be empty"})
	}
	if len(specs) > MaxRoundsPerRequest {
		return nil, apperr.Validation("too many rounds", map[string]string{"rounds": "at most 50 rounds per request"})
	}
	fields := map[string]string{}
	for i, s := range specs {
		if strings.TrimSpace(s.Name) == "" {
			fields["rounds["+strconv.Itoa(i)+"].name"] = "is required"
		}
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("invalid rounds", fields)
	}

	next := job.NextRoundIndex()
	created := make([]models.Round, 0, len(specs))
	for i, s := range specs {
		r := models.Round{
			ID:                  primitive.NewObjectID(),
			Index:               next + i,
			Name:                strings.TrimSpace(s.Name),
			DateTime:            s.DateTime,
			QualifiedStudents:   []primitive.ObjectID{},
			UnqualifiedStudents: []primitive.ObjectID{},
			AbsentStudents:      []primitive.ObjectID{},
		}
		created = append(created, r)
	}
	job.Rounds = append(job.Rounds, created...)
	return created, nil
}

// Pool returns the students allowed to have a result in the round with the
// given index: the applied students for round 1, otherwise the qualified
// students of the preceding round.
func Pool(job *models.Job, index int) map[primitive.ObjectID]bool {
	pool := map[primitive.ObjectID]bool{}
	if index <= 1 {
		for _, s := range job.AppliedStudents {
			pool[s.StudentID] = true
		}
		return pool
	}
	prev, ok := job.RoundByIndex(index - 1)
	if !ok {
		return pool
	}
	for _, id := range prev.QualifiedStudents {
		pool[id] = true
	}
	return pool
}

// Results are the outcome sets submitted for one round.
type Results struct {
	Qualified   []primitive.ObjectID
	Unqualified []primitive.ObjectID
	Absent      []primitive.ObjectID
}

// Options tune Record.
type Options struct {
	// LockResolved rejects re-recording a round that already has results.
	LockResolved bool
	Now          time.Time
}

// Record validates res against the round's participant pool and replaces
// the round's result sets. It returns the updated round.
func Record(job *models.Job, roundID primitive.ObjectID, res Results, opts Options) (models.Round, error) {
	pos := job.RoundByID(roundID)
	if pos < 0 {
		return models.Round{}, apperr.NotFound("round not found")
	}
	round := job.Rounds[pos]
	if opts.LockResolved && round.Resolved {
		return models.Round{}, apperr.Conflict("round results have already been recorded")
	}

	if err := validateResults(res, Pool(job, round.Index)); err != nil {
		return models.Round{}, err
	}

	qualified := idSet(res.Qualified)
	if next, ok := job.RoundByIndex(round.Index + 1); ok {
		for _, id := range next.Participants() {
			if !qualified[id] {
				return models.Round{}, apperr.Conflict("a later round has results for a student who would no longer qualify")
			}
		}
	}

	round.QualifiedStudents = nonNil(res.Qualified)
	round.UnqualifiedStudents = nonNil(res.Unqualified)
	round.AbsentStudents = nonNil(res.Absent)
	round.Resolved = len(round.QualifiedStudents)+len(round.UnqualifiedStudents)+len(round.AbsentStudents) > 0
	if round.Resolved {
		now := opts.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		round.ResolvedAt = &now
	} else {
		round.ResolvedAt = nil
	}
	job.Rounds[pos] = round
	return round, nil
}

// validateResults rejects duplicates within or across the three sets and
// any student outside the pool.
func validateResults(res Results, pool map[primitive.ObjectID]bool) error {
	seen := map[primitive.ObjectID]string{}
	fields := map[string]string{}
	var dup, outside []string

	check := func(field string, ids []primitive.ObjectID) {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				dup = append(dup, id.Hex())
				continue
			}
			seen[id] = field
			if !pool[id] {
				outside = append(outside, id.Hex())
			}
		}
	}
	check("qualified_students", res.Qualified)
	check("unqualified_students", res.Unqualified)
	check("absent_students", res.Absent)

	if len(dup) > 0 {
		sort.Strings(dup)
		fields["duplicates"] = strings.Join(dup, ",")
	}
	if len(outside) > 0 {
		sort.Strings(outside)
		fields["not_in_pool"] = strings.Join(outside, ",")
	}
	if len(fields) > 0 {
		return apperr.Validation("round results do not match the eligible participants", fields)
	}
	return nil
}

func contains(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func idSet(ids []primitive.ObjectID) map[primitive.ObjectID]bool {
	set := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func nonNil(ids []primitive.ObjectID) []primitive.ObjectID {
	if ids == nil {
		return []primitive.ObjectID{}
	}
	out := make([]primitive.ObjectID, len(ids))
	copy(out, ids)
	return out
}
