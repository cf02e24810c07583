package jobstore_test

import (
	"errors"
	"testing"
	"time"

	jobstore "github.com/dalemusser/placementhub/internal/app/store/jobs"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := jobstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := primitive.NewObjectID()
	snap := models.StudentSnapshot{StudentID: primitive.NewObjectID(), FirstName: "Asha", Branch: "CSE"}
	created, err := store.Create(ctx, models.Job{
		Title:            "Graduate Engineer",
		Company:          "ACME Corp",
		Type:             models.JobTypeJob,
		JobDate:          time.Now().UTC().Truncate(time.Millisecond),
		InstitutionID:    inst,
		EligibleStudents: []models.StudentSnapshot{snap},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Version != 1 || created.TitleCI != text.Fold("Graduate Engineer") || created.CompanyCI != text.Fold("ACME Corp") {
		t.Errorf("unexpected created job: version=%d title_ci=%q company_ci=%q", created.Version, created.TitleCI, created.CompanyCI)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.EligibleStudents) != 1 || got.EligibleStudents[0].StudentID != snap.StudentID {
		t.Errorf("eligible snapshot not persisted: %+v", got.EligibleStudents)
	}
	if got.AppliedStudents == nil || got.Rounds == nil || got.Placements == nil {
		t.Error("collections should be stored as empty arrays")
	}

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, jobstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStore_Replace_VersionCheck(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := jobstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	job := fx.CreateJob(ctx, models.Job{InstitutionID: primitive.NewObjectID()})

	first := job.Clone()
	first.Logo = "/assets/a.png"
	saved, err := store.Replace(ctx, first)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if saved.Version != 2 {
		t.Errorf("version = %d, want 2", saved.Version)
	}

	stale := job.Clone()
	stale.Logo = "/assets/b.png"
	if _, err := store.Replace(ctx, stale); !errors.Is(err, jobstore.ErrVersionConflict) {
		t.Errorf("stale write err = %v, want ErrVersionConflict", err)
	}

	got, _ := store.GetByID(ctx, job.ID)
	if got.Logo != "/assets/a.png" {
		t.Errorf("logo = %q, stale write must not land", got.Logo)
	}

	missing := job.Clone()
	missing.ID = primitive.NewObjectID()
	if _, err := store.Replace(ctx, missing); !errors.Is(err, jobstore.ErrNotFound) {
		t.Errorf("missing job err = %v, want ErrNotFound", err)
	}
}

func TestStore_Replace_KeepsCounterInStep(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := jobstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	job := fx.CreateJob(ctx, models.Job{InstitutionID: primitive.NewObjectID()})
	next := job.Clone()
	next.AppliedStudents = append(next.AppliedStudents, models.StudentSnapshot{StudentID: primitive.NewObjectID()})
	next.TotalApplications = 99

	saved, err := store.Replace(ctx, next)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if saved.TotalApplications != 1 {
		t.Errorf("total_applications = %d, want 1", saved.TotalApplications)
	}
}

func TestStore_DeleteAndReinsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := jobstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	job := fx.CreateJob(ctx, models.Job{InstitutionID: primitive.NewObjectID()})

	next := job.Clone()
	next.Title = "Renamed"
	saved, err := store.Replace(ctx, next)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	if err := store.Delete(ctx, job.ID, job.Version); !errors.Is(err, jobstore.ErrVersionConflict) {
		t.Fatalf("stale Delete err = %v, want ErrVersionConflict", err)
	}
	if _, err := store.GetByID(ctx, job.ID); err != nil {
		t.Fatalf("stale Delete removed the job: %v", err)
	}
	if err := store.Delete(ctx, job.ID, saved.Version); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete(ctx, job.ID, saved.Version); !errors.Is(err, jobstore.ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
	if err := store.Reinsert(ctx, saved); err != nil {
		t.Fatalf("Reinsert failed: %v", err)
	}
	if _, err := store.GetByID(ctx, job.ID); err != nil {
		t.Errorf("job should be back: %v", err)
	}
}

func TestStore_Lists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	store := jobstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := primitive.NewObjectID()
	student := primitive.NewObjectID()
	base := time.Now().UTC().Truncate(time.Millisecond)

	older := fx.CreateJob(ctx, models.Job{
		Title: "Older", InstitutionID: inst, JobDate: base.Add(-48 * time.Hour),
		EligibleStudents: []models.StudentSnapshot{{StudentID: student}},
	})
	newer := fx.CreateJob(ctx, models.Job{
		Title: "Newer", InstitutionID: inst, JobDate: base,
		AppliedStudents: []models.StudentSnapshot{{StudentID: student}},
	})
	fx.CreateJob(ctx, models.Job{Title: "Elsewhere", InstitutionID: primitive.NewObjectID(), JobDate: base})

	byInst, err := store.ListByInstitution(ctx, inst)
	if err != nil {
		t.Fatalf("ListByInstitution failed: %v", err)
	}
	if len(byInst) != 2 || byInst[0].ID != newer.ID || byInst[1].ID != older.ID {
		t.Errorf("ListByInstitution should return [Newer Older], got %d jobs", len(byInst))
	}

	eligible, err := store.ListEligibleFor(ctx, student)
	if err != nil {
		t.Fatalf("ListEligibleFor failed: %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID != older.ID {
		t.Errorf("ListEligibleFor = %d jobs, want [Older]", len(eligible))
	}

	applied, err := store.ListAppliedBy(ctx, student)
	if err != nil {
		t.Fatalf("ListAppliedBy failed: %v", err)
	}
	if len(applied) != 1 || applied[0].ID != newer.ID {
		t.Errorf("ListAppliedBy = %d jobs, want [Newer]", len(applied))
	}

	none, err := store.ListAppliedBy(ctx, primitive.NewObjectID())
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("ListAppliedBy for stranger = %v, %v; want empty non-nil", none, err)
	}
}
