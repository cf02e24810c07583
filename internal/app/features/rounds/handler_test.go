package rounds_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/placementhub/internal/app/features/rounds"
	"github.com/dalemusser/placementhub/internal/app/placement"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newRouter(t *testing.T, db *mongo.Database) http.Handler {
	t.Helper()
	svc := placement.New(placement.Deps{DB: db, Log: zap.NewNop()}, placement.Config{})
	r := chi.NewRouter()
	r.Mount("/jobs/{jobId}/rounds", rounds.Routes(rounds.NewHandler(svc, zap.NewNop()), testutil.NewSessionManager(t)))
	return r
}

func TestCreateRoundsAndRecordResults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := primitive.NewObjectID()
	admin := testutil.AsTestUser(fx.CreateAdmin(ctx, inst, "Officer"))
	a := fx.CreateStudent(ctx, inst, testutil.StudentOpts{})
	b := fx.CreateStudent(ctx, inst, testutil.StudentOpts{})
	job := fx.CreateJob(ctx, models.Job{
		InstitutionID:   inst,
		AppliedStudents: []models.StudentSnapshot{testutil.Snapshot(a), testutil.Snapshot(b)},
	})
	router := newRouter(t, db)
	base := "/jobs/" + job.ID.Hex() + "/rounds"

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest(t, "POST", base, map[string]any{
		"rounds": []map[string]any{
			{"name": "Aptitude", "date_time": "2025-02-01T10:00"},
			{"name": "Interview"},
		},
	}), admin))
	rec.AssertStatus(t, http.StatusCreated)

	var created struct {
		Rounds []models.Round `json:"rounds"`
	}
	rec.DecodeJSON(t, &created)
	if len(created.Rounds) != 2 || created.Rounds[0].Index != 1 || created.Rounds[1].Index != 2 {
		t.Fatalf("rounds = %+v", created.Rounds)
	}
	if created.Rounds[0].DateTime == nil {
		t.Error("date_time not stored")
	}

	round1 := base + "/" + created.Rounds[0].ID.Hex()

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest(t, "PUT", round1, map[string]any{
		"qualified_students":   []string{a.ID.Hex()},
		"unqualified_students": []string{b.ID.Hex()},
	}), admin))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest(t, "PUT", round1, map[string]any{
		"qualified_students": []string{primitive.NewObjectID().Hex()},
	}), admin))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest(t, "PUT", round1, map[string]any{
		"qualified_students": []string{"not-hex"},
	}), admin))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest(t, "PUT", base+"/"+primitive.NewObjectID().Hex(), map[string]any{}), admin))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestRoundsAccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := primitive.NewObjectID()
	student := fx.CreateStudent(ctx, inst, testutil.StudentOpts{})
	job := fx.CreateJob(ctx, models.Job{InstitutionID: inst})
	router := newRouter(t, db)
	base := "/jobs/" + job.ID.Hex() + "/rounds"
	body := map[string]any{"rounds": []map[string]any{{"name": "Aptitude"}}}

	tests := []struct {
		name   string
		user   testutil.TestUser
		status int
	}{
		{"student", testutil.StudentUser(student), http.StatusForbidden},
		{"other institution admin", testutil.AdminUser(primitive.NewObjectID()), http.StatusForbidden},
		{"global admin", testutil.GlobalAdminUser(), http.StatusCreated},
		{"own admin", testutil.AdminUser(inst), http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest(t, "POST", base, body), tt.user))
			rec.AssertStatus(t, tt.status)
		})
	}

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(testutil.NewJSONRequest(t, "POST", base, map[string]any{"rounds": []any{}}), testutil.AdminUser(inst)))
	rec.AssertStatus(t, http.StatusBadRequest)
}
