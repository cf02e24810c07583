package studentjobs_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/app/features/studentjobs"
	"github.com/dalemusser/placementhub/internal/app/placement"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestApplicationsAndNotifications(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := primitive.NewObjectID()
	admin := fx.CreateAdmin(ctx, inst, "Placement Officer")
	s := fx.CreateStudent(ctx, inst, testutil.StudentOpts{})
	other := fx.CreateStudent(ctx, inst, testutil.StudentOpts{})

	round := models.Round{
		ID:                  primitive.NewObjectID(),
		Index:               1,
		Name:                "Aptitude",
		QualifiedStudents:   []primitive.ObjectID{},
		UnqualifiedStudents: []primitive.ObjectID{s.ID},
		AbsentStudents:      []primitive.ObjectID{},
		Resolved:            true,
	}
	pending := models.Round{
		ID:                  primitive.NewObjectID(),
		Index:               2,
		Name:                "Interview",
		QualifiedStudents:   []primitive.ObjectID{},
		UnqualifiedStudents: []primitive.ObjectID{},
		AbsentStudents:      []primitive.ObjectID{},
	}
	job := fx.CreateJob(ctx, models.Job{
		InstitutionID:   inst,
		CreatedBy:       admin.ID,
		AppliedStudents: []models.StudentSnapshot{testutil.Snapshot(s)},
		Rounds:          []models.Round{round, pending},
		JobDate:         time.Now().UTC().Truncate(time.Millisecond),
	})

	svc := placement.New(placement.Deps{DB: db, Log: zap.NewNop()}, placement.Config{})
	router := studentjobs.Routes(studentjobs.NewHandler(svc, zap.NewNop()), testutil.NewSessionManager(t))

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/applications", testutil.StudentUser(s)))
	rec.AssertStatus(t, http.StatusOK)
	var apps struct {
		Applications []placement.Application `json:"applications"`
	}
	rec.DecodeJSON(t, &apps)
	if len(apps.Applications) != 1 || apps.Applications[0].JobID != job.ID {
		t.Fatalf("applications = %+v", apps.Applications)
	}
	if apps.Applications[0].CreatedByName != "Placement Officer" {
		t.Errorf("created_by_name = %q", apps.Applications[0].CreatedByName)
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/notifications", testutil.StudentUser(s)))
	rec.AssertStatus(t, http.StatusOK)
	var feed struct {
		Notifications []placement.Notification `json:"notifications"`
	}
	rec.DecodeJSON(t, &feed)
	if len(feed.Notifications) != 2 {
		t.Fatalf("notifications = %+v", feed.Notifications)
	}
	if feed.Notifications[0].Status != "Not Qualified" || feed.Notifications[1].Status != "Pending" {
		t.Errorf("statuses = %q, %q", feed.Notifications[0].Status, feed.Notifications[1].Status)
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/notifications", testutil.StudentUser(other)))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"notifications":[]`)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/applications", testutil.AsTestUser(admin)))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/applications"))
	rec.AssertStatus(t, http.StatusUnauthorized)
}
