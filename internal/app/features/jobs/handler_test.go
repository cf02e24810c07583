package jobs_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/app/features/jobs"
	"github.com/dalemusser/placementhub/internal/app/placement"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/placementhub/internal/testutil"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newRouter(t *testing.T, db *mongo.Database) chi.Router {
	t.Helper()
	store := storage.NewMemory(storage.MemoryConfig{BaseURL: "/assets"})
	svc := placement.New(placement.Deps{DB: db, Log: zap.NewNop(), Assets: store}, placement.Config{})
	return jobs.Routes(jobs.NewHandler(svc, zap.NewNop()), testutil.NewSessionManager(t))
}

func serve(router http.Handler, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndListJobs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := primitive.NewObjectID()
	admin := fx.CreateAdmin(ctx, inst, "Officer")
	cse := fx.CreateStudent(ctx, inst, testutil.StudentOpts{Branch: "CSE", Tenth: testutil.Float(85)})
	fx.CreateStudent(ctx, inst, testutil.StudentOpts{Branch: "IT", Tenth: testutil.Float(85)})
	router := newRouter(t, db)

	body := map[string]any{
		"title":    "Graduate Engineer",
		"company":  "Acme",
		"type":     "Job",
		"job_date": "2025-08-01",
		"eligibility_criteria": map[string]any{
			"branches":             []string{"CSE"},
			"min_tenth_percentage": 80,
		},
	}
	rec := serve(router, testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/", body), testutil.AsTestUser(admin)))
	rec.AssertStatus(t, http.StatusCreated)

	var created struct {
		Job models.Job `json:"job"`
	}
	rec.DecodeJSON(t, &created)
	if len(created.Job.EligibleStudents) != 1 || created.Job.EligibleStudents[0].StudentID != cse.ID {
		t.Fatalf("eligible = %+v", created.Job.EligibleStudents)
	}
	if !created.Job.JobDate.Equal(time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("job_date = %v", created.Job.JobDate)
	}

	rec = serve(router, testutil.NewAuthenticatedRequest("GET", "/", testutil.AsTestUser(admin)))
	rec.AssertStatus(t, http.StatusOK)
	var list struct {
		Jobs []models.Job `json:"jobs"`
	}
	rec.DecodeJSON(t, &list)
	if len(list.Jobs) != 1 {
		t.Errorf("jobs = %d, want 1", len(list.Jobs))
	}

	rec = serve(router, testutil.NewAuthenticatedRequest("GET", "/eligible", testutil.StudentUser(cse)))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Graduate Engineer")
}

func TestCreateJob_Rejections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := primitive.NewObjectID()
	admin := testutil.AsTestUser(fx.CreateAdmin(ctx, inst, "Officer"))
	student := testutil.StudentUser(fx.CreateStudent(ctx, inst, testutil.StudentOpts{}))
	router := newRouter(t, db)

	tests := []struct {
		name   string
		user   *testutil.TestUser
		body   any
		status int
		kind   string
	}{
		{"anonymous", nil, map[string]any{}, http.StatusUnauthorized, "authentication"},
		{"student", &student, map[string]any{}, http.StatusForbidden, "authorization"},
		{"missing fields", &admin, map[string]any{"title": "x"}, http.StatusBadRequest, "validation"},
		{"malformed json", &admin, "{", http.StatusBadRequest, "validation"},
		{"bad date", &admin, map[string]any{"title": "x", "company": "y", "type": "job", "job_date": "soon"}, http.StatusBadRequest, "validation"},
		{"negative threshold", &admin, map[string]any{
			"title": "x", "company": "y", "type": "job", "job_date": "2025-01-01",
			"eligibility_criteria": map[string]any{"min_cgpa": -1},
		}, http.StatusBadRequest, "validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "POST", "/", tt.body)
			if tt.user != nil {
				req = testutil.WithUser(req, *tt.user)
			}
			rec := serve(router, req)
			rec.AssertStatus(t, tt.status)
			if got := rec.ErrorKind(); got != tt.kind {
				t.Errorf("kind = %q, want %q", got, tt.kind)
			}
		})
	}
}

func TestPreviewEligible(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := primitive.NewObjectID()
	admin := testutil.AsTestUser(fx.CreateAdmin(ctx, inst, "Officer"))
	fx.CreateStudent(ctx, inst, testutil.StudentOpts{Branch: "CSE"})
	fx.CreateStudent(ctx, inst, testutil.StudentOpts{Branch: "ENTC"})
	router := newRouter(t, db)

	rec := serve(router, testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/eligible-students",
		map[string]any{"eligibility_criteria": map[string]any{"branches": []string{"CSE"}}}), admin))
	rec.AssertStatus(t, http.StatusOK)
	var resp struct {
		Count int `json:"count"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.Count != 1 {
		t.Errorf("count = %d, want 1", resp.Count)
	}

	rec = serve(router, testutil.WithUser(testutil.NewJSONRequest(t, "POST", "/eligible-students",
		map[string]any{"eligibility_criteria": map[string]any{"favourite_colour": "blue"}}), admin))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestApplyAndApplicants(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := primitive.NewObjectID()
	adminUser := fx.CreateAdmin(ctx, inst, "Officer")
	s := fx.CreateStudent(ctx, inst, testutil.StudentOpts{FirstName: "Asha"})
	other := fx.CreateStudent(ctx, inst, testutil.StudentOpts{})
	job := fx.CreateJob(ctx, models.Job{
		InstitutionID:    inst,
		CreatedBy:        adminUser.ID,
		EligibleStudents: []models.StudentSnapshot{testutil.Snapshot(s)},
	})
	router := newRouter(t, db)
	target := "/" + job.ID.Hex() + "/apply"

	rec := serve(router, testutil.NewAuthenticatedRequest("POST", target, testutil.StudentUser(s)))
	rec.AssertStatus(t, http.StatusOK)

	rec = serve(router, testutil.NewAuthenticatedRequest("POST", target, testutil.StudentUser(s)))
	rec.AssertStatus(t, http.StatusConflict)

	rec = serve(router, testutil.NewAuthenticatedRequest("POST", target, testutil.StudentUser(other)))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = serve(router, testutil.NewAuthenticatedRequest("POST", "/"+primitive.NewObjectID().Hex()+"/apply", testutil.StudentUser(s)))
	rec.AssertStatus(t, http.StatusNotFound)

	rec = serve(router, testutil.NewAuthenticatedRequest("POST", "/not-an-id/apply", testutil.StudentUser(s)))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = serve(router, testutil.NewAuthenticatedRequest("GET", "/"+job.ID.Hex()+"/applied-students", testutil.AsTestUser(adminUser)))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Asha")

	rec = serve(router, testutil.NewAuthenticatedRequest("GET", "/"+job.ID.Hex()+"/applied-students", testutil.GlobalAdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	rec = serve(router, testutil.NewAuthenticatedRequest("GET", "/"+job.ID.Hex()+"/applied-students", testutil.AdminUser(primitive.NewObjectID())))
	rec.AssertStatus(t, http.StatusForbidden)
}

func TestGetAndDeleteJob(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := primitive.NewObjectID()
	admin := fx.CreateAdmin(ctx, inst, "Officer")
	job := fx.CreateJob(ctx, models.Job{InstitutionID: inst, CreatedBy: admin.ID})
	router := newRouter(t, db)
	target := "/" + job.ID.Hex()

	rec := serve(router, testutil.NewAuthenticatedRequest("GET", target, testutil.AsTestUser(admin)))
	rec.AssertStatus(t, http.StatusOK)

	rec = serve(router, testutil.NewAuthenticatedRequest("DELETE", target, testutil.AdminUser(primitive.NewObjectID())))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = serve(router, testutil.NewAuthenticatedRequest("DELETE", target, testutil.AsTestUser(admin)))
	rec.AssertStatus(t, http.StatusOK)

	rec = serve(router, testutil.NewAuthenticatedRequest("GET", target, testutil.AsTestUser(admin)))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestUpdateLogo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := primitive.NewObjectID()
	admin := fx.CreateAdmin(ctx, inst, "Officer")
	job := fx.CreateJob(ctx, models.Job{InstitutionID: inst, CreatedBy: admin.ID})
	router := newRouter(t, db)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("logo", "acme.png")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	_, _ = part.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...))
	_ = mw.Close()

	target := "/" + job.ID.Hex() + "/logo"
	req := httptest.NewRequest("PUT", target, bytes.NewReader(buf.Bytes()))
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := serve(router, testutil.WithUser(req, testutil.AsTestUser(admin)))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "/assets/logos/")

	plain := httptest.NewRequest("PUT", target, bytes.NewReader([]byte("not a form")))
	plain.Header.Set("Content-Type", "text/plain")
	rec = serve(router, testutil.WithUser(plain, testutil.AsTestUser(admin)))
	rec.AssertStatus(t, http.StatusBadRequest)

	student := fx.CreateStudent(ctx, inst, testutil.StudentOpts{})
	req = httptest.NewRequest("PUT", target, bytes.NewReader(buf.Bytes()))
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = serve(router, testutil.WithUser(req, testutil.StudentUser(student)))
	rec.AssertStatus(t, http.StatusForbidden)
}
