package auditlog_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/app/features/auditlog"
	"github.com/dalemusser/placementhub/internal/app/store/audit"
	"github.com/dalemusser/placementhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type listBody struct {
	Events []auditlog.EventView `json:"events"`
}

func TestServeList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	instA := primitive.NewObjectID()
	instB := primitive.NewObjectID()
	jobA := primitive.NewObjectID()

	store := audit.New(db)
	base := time.Now().UTC().Add(-time.Hour)
	seed := []audit.Event{
		{Timestamp: base, InstitutionID: &instA, Category: audit.CategoryJobs, EventType: audit.EventJobCreated, JobID: &jobA, Success: true},
		{Timestamp: base.Add(time.Minute), InstitutionID: &instA, Category: audit.CategoryJobs, EventType: audit.EventStudentApplied, JobID: &jobA, Success: true},
		{Timestamp: base.Add(2 * time.Minute), InstitutionID: &instB, Category: audit.CategoryJobs, EventType: audit.EventJobCreated, Success: true},
	}
	for _, e := range seed {
		if err := store.Log(ctx, e); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	router := auditlog.Routes(auditlog.NewHandler(db, zap.NewNop()), testutil.NewSessionManager(t))

	tests := []struct {
		name   string
		target string
		user   testutil.TestUser
		want   int
	}{
		{"admin sees own institution", "/", testutil.AdminUser(instA), 2},
		{"admin cannot widen to another institution", "/?institution_id=" + instB.Hex(), testutil.AdminUser(instA), 2},
		{"admin filters by event type", "/?event_type=student_applied", testutil.AdminUser(instA), 1},
		{"admin filters by job", "/?job_id=" + jobA.Hex(), testutil.AdminUser(instA), 2},
		{"global admin sees everything", "/", testutil.GlobalAdminUser(), 3},
		{"global admin filters by institution", "/?institution_id=" + instB.Hex(), testutil.GlobalAdminUser(), 1},
		{"limit caps results", "/?limit=1", testutil.GlobalAdminUser(), 1},
		{"since excludes older events", "/?since=" + base.Add(90*time.Second).Format(time.RFC3339), testutil.GlobalAdminUser(), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", tt.target, tt.user))
			rec.AssertStatus(t, http.StatusOK)

			var body listBody
			rec.DecodeJSON(t, &body)
			if len(body.Events) != tt.want {
				t.Errorf("got %d events, want %d", len(body.Events), tt.want)
			}
		})
	}
}

func TestServeList_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inst := primitive.NewObjectID()
	store := audit.New(db)
	older := time.Now().UTC().Add(-2 * time.Hour).Truncate(time.Millisecond)
	newer := older.Add(time.Hour)
	for _, ts := range []time.Time{older, newer} {
		if err := store.Log(ctx, audit.Event{Timestamp: ts, InstitutionID: &inst, Category: audit.CategoryJobs, EventType: audit.EventJobCreated}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	router := auditlog.Routes(auditlog.NewHandler(db, zap.NewNop()), testutil.NewSessionManager(t))
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/", testutil.AdminUser(inst)))
	rec.AssertStatus(t, http.StatusOK)

	var body listBody
	rec.DecodeJSON(t, &body)
	if len(body.Events) != 2 {
		t.Fatalf("got %d events, want 2", len(body.Events))
	}
	if !body.Events[0].Timestamp.Equal(newer) {
		t.Errorf("first event at %v, want %v", body.Events[0].Timestamp, newer)
	}
	if body.Events[0].InstitutionID != inst.Hex() {
		t.Errorf("institution_id = %q", body.Events[0].InstitutionID)
	}
}

func TestServeList_Rejections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	router := auditlog.Routes(auditlog.NewHandler(db, zap.NewNop()), testutil.NewSessionManager(t))
	inst := primitive.NewObjectID()

	student := testutil.AdminUser(inst)
	student.Role = "student"

	tests := []struct {
		name   string
		target string
		user   *testutil.TestUser
		want   int
		kind   string
	}{
		{"anonymous", "/", nil, http.StatusUnauthorized, "authentication"},
		{"student", "/", &student, http.StatusForbidden, "authorization"},
		{"bad limit", "/?limit=500", ptr(testutil.AdminUser(inst)), http.StatusBadRequest, "validation"},
		{"bad job id", "/?job_id=nope", ptr(testutil.AdminUser(inst)), http.StatusBadRequest, "validation"},
		{"bad since", "/?since=yesterday", ptr(testutil.GlobalAdminUser()), http.StatusBadRequest, "validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewRequest("GET", tt.target)
			if tt.user != nil {
				req = testutil.NewAuthenticatedRequest("GET", tt.target, *tt.user)
			}
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, req)
			rec.AssertStatus(t, tt.want)
			if got := rec.ErrorKind(); got != tt.kind {
				t.Errorf("kind = %q, want %q", got, tt.kind)
			}
		})
	}
}

func ptr(u testutil.TestUser) *testutil.TestUser { return &u }
