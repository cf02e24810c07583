package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func snap(id primitive.ObjectID, first string) StudentSnapshot {
	return StudentSnapshot{StudentID: id, FirstName: first, Branch: "CSE"}
}

func TestJob_UndoApply(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	job := Job{EligibleStudents: []StudentSnapshot{snap(a, "Asha"), snap(b, "Ben")}}
	before, ok := job.EligibleEntry(a)
	if !ok {
		t.Fatal("EligibleEntry should find a")
	}

	job.MoveToApplied(snap(a, "Asha R"))
	job.MoveToApplied(snap(b, "Ben"))
	if job.TotalApplications != 2 || len(job.EligibleStudents) != 0 {
		t.Fatalf("after apply: %+v", job)
	}

	if !job.UndoApply(before) {
		t.Fatal("UndoApply should report a change")
	}
	if job.HasApplied(a) || !job.HasApplied(b) {
		t.Errorf("applied = %+v", job.AppliedStudents)
	}
	if got, ok := job.EligibleEntry(a); !ok || got.FirstName != "Asha" {
		t.Errorf("eligible entry = %+v, %v", got, ok)
	}
	if job.TotalApplications != 1 {
		t.Errorf("TotalApplications = %d, want 1", job.TotalApplications)
	}

	if job.UndoApply(before) {
		t.Error("second UndoApply should be a no-op")
	}
	if len(job.EligibleStudents) != 1 {
		t.Errorf("eligible duplicated: %+v", job.EligibleStudents)
	}
}

func TestJob_RemovePlacement(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	job := Job{Placements: []Placement{{StudentID: a, PackageAmount: 5}, {StudentID: b, PackageAmount: 7}}}
	clone := job.Clone()

	if !job.RemovePlacement(a) {
		t.Fatal("RemovePlacement should report a change")
	}
	if _, ok := job.PlacementFor(a); ok {
		t.Error("placement for a should be gone")
	}
	if p, ok := job.PlacementFor(b); !ok || p.PackageAmount != 7 {
		t.Errorf("placement for b = %+v, %v", p, ok)
	}
	if job.RemovePlacement(a) {
		t.Error("removing a missing placement should report no change")
	}
	if len(clone.Placements) != 2 {
		t.Errorf("clone shares placements: %+v", clone.Placements)
	}
}
