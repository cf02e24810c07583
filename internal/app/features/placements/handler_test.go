package placements_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/placementhub/internal/app/features/placements"
	"github.com/dalemusser/placementhub/internal/app/placement"
	"github.com/dalemusser/placementhub/internal/app/system/authz"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestAddAndListPlacements(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := primitive.NewObjectID()
	admin := testutil.AsTestUser(fx.CreateAdmin(ctx, inst, "Officer"))
	s := fx.CreateStudent(ctx, inst, testutil.StudentOpts{FirstName: "Asha", Branch: "CSE"})
	job := fx.CreateJob(ctx, models.Job{
		InstitutionID:    inst,
		EligibleStudents: []models.StudentSnapshot{testutil.Snapshot(s)},
	})

	// Apply through the service so the student's history entry exists.
	svc := placement.New(placement.Deps{DB: db, Log: zap.NewNop()}, placement.Config{})
	studentPrincipal := authz.Principal{UserID: s.ID, Role: models.RoleStudent, InstitutionID: inst}
	if _, err := svc.Apply(ctx, studentPrincipal, job.ID); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	r := chi.NewRouter()
	r.Mount("/jobs/{jobId}/placements", placements.Routes(placements.NewHandler(svc, zap.NewNop()), testutil.NewSessionManager(t)))
	base := "/jobs/" + job.ID.Hex() + "/placements"

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"zero package", map[string]any{"student_id": s.ID.Hex(), "package_amount": 0}, http.StatusBadRequest},
		{"missing student", map[string]any{"package_amount": 6}, http.StatusBadRequest},
		{"bad placed_on", map[string]any{"student_id": s.ID.Hex(), "package_amount": 6, "placed_on": "tomorrow"}, http.StatusBadRequest},
		{"first", map[string]any{"student_id": s.ID.Hex(), "package_amount": 6, "placed_on": "2025-03-01"}, http.StatusCreated},
		{"duplicate", map[string]any{"student_id": s.ID.Hex(), "package_amount": 7}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			r.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest(t, "POST", base, tt.body), admin))
			rec.AssertStatus(t, tt.status)
		})
	}

	rec := testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", base, admin))
	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		Placements []placement.PlacementView `json:"placements"`
	}
	rec.DecodeJSON(t, &resp)
	if len(resp.Placements) != 1 || resp.Placements[0].FirstName != "Asha" || resp.Placements[0].PackageAmount != 6 {
		t.Errorf("placements = %+v", resp.Placements)
	}

	rec = testutil.NewRecorder()
	r.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", base, testutil.GlobalAdminUser()))
	rec.AssertStatus(t, http.StatusForbidden)
}
