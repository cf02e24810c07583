package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/notify"
	"github.com/dalemusser/placementhub/internal/app/system/ratelimit"
	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/placementhub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "placement_hub",
		SessionKey:      "test-session-key-must-be-32-chars-long",
		SessionName:     "test-session",
		SessionMaxAge:   time.Hour,
		AuditLogJobs:    "all",
		NotifyQueueSize: 8,
		ApplyRateLimit:  5,
		ApplyRateWindow: time.Minute,
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", func(*AppConfig) {}, false},
		{"bad mongo uri", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, true},
		{"missing database", func(c *AppConfig) { c.MongoDatabase = " " }, true},
		{"missing session key", func(c *AppConfig) { c.SessionKey = "" }, true},
		{"unknown audit mode", func(c *AppConfig) { c.AuditLogJobs = "verbose" }, true},
		{"audit off", func(c *AppConfig) { c.AuditLogJobs = "off" }, false},
		{"zero queue", func(c *AppConfig) { c.NotifyQueueSize = 0 }, true},
		{"negative rate limit", func(c *AppConfig) { c.ApplyRateLimit = -1 }, true},
		{"rate limit disabled", func(c *AppConfig) { c.ApplyRateLimit = 0; c.ApplyRateWindow = 0 }, false},
		{"rate limit without window", func(c *AppConfig) { c.ApplyRateWindow = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConnectDB_Unreachable(t *testing.T) {
	cfg := validAppConfig()
	cfg.MongoURI = "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=500"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := ConnectDB(ctx, &config.CoreConfig{Env: "dev"}, cfg, testLogger()); err == nil {
		t.Fatal("expected ConnectDB to fail against an unreachable server")
	}
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoClient: db.Client(), MongoDatabase: db}
	for i := 0; i < 2; i++ {
		if err := EnsureSchema(ctx, nil, validAppConfig(), deps, testLogger()); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}

	names, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		t.Fatalf("ListCollectionNames: %v", err)
	}
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	for _, want := range []string{"jobs", "users"} {
		if !found[want] {
			t.Errorf("collection %q not created (have %v)", want, names)
		}
	}
}

func TestStartupAndShutdown(t *testing.T) {
	defer timeouts.Reset()

	cfg := validAppConfig()
	cfg.TimeoutShort = 3 * time.Second

	deps := DBDeps{
		Notices:      notify.NewDispatcher(4, time.Second, testLogger()),
		ApplyLimiter: ratelimit.New(cfg.ApplyRateLimit, cfg.ApplyRateWindow),
	}

	if err := Startup(context.Background(), nil, cfg, deps, testLogger()); err != nil {
		t.Fatalf("Startup: %v", err)
	}
	if got := timeouts.Short(); got != 3*time.Second {
		t.Errorf("timeouts.Short() = %v, want 3s", got)
	}
	if got := timeouts.Medium(); got != timeouts.DefaultMedium {
		t.Errorf("timeouts.Medium() = %v, want default", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := Shutdown(ctx, nil, cfg, deps, testLogger()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if deps.Notices.Enqueue(notify.PlacementNotice{}) {
		t.Error("stopped dispatcher accepted a notice")
	}
}

func TestBuildHandler_Routes(t *testing.T) {
	db := testutil.SetupTestDB(t)

	cfg := validAppConfig()
	cfg.AssetLocalPath = t.TempDir()
	cfg.AssetLocalURL = "/files"

	deps := DBDeps{
		MongoClient:   db.Client(),
		MongoDatabase: db,
		Notices:       notify.NewDispatcher(4, time.Second, testLogger()),
		ApplyLimiter:  ratelimit.New(0, 0),
	}

	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/jobs", http.StatusUnauthorized},
		{http.MethodGet, "/jobs/eligible", http.StatusUnauthorized},
		{http.MethodPost, "/jobs/507f1f77bcf86cd799439011/rounds", http.StatusUnauthorized},
		{http.MethodGet, "/jobs/507f1f77bcf86cd799439011/placements", http.StatusUnauthorized},
		{http.MethodGet, "/me/notifications", http.StatusUnauthorized},
		{http.MethodGet, "/audit", http.StatusUnauthorized},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestBuildHandler_ServesStoredLogos(t *testing.T) {
	db := testutil.SetupTestDB(t)

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "logos"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "logos", "acme.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("write logo: %v", err)
	}

	cfg := validAppConfig()
	cfg.AssetLocalPath = dir
	cfg.AssetLocalURL = "files/"

	h, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, DBDeps{MongoClient: db.Client(), MongoDatabase: db}, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/logos/acme.png", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "png-bytes" {
		t.Errorf("status = %d, body = %q", rec.Code, rec.Body.String())
	}
}

func TestBuildHandler_RejectsEmptySessionKey(t *testing.T) {
	cfg := validAppConfig()
	cfg.SessionKey = ""
	cfg.AssetLocalPath = t.TempDir()

	if _, err := BuildHandler(&config.CoreConfig{Env: "dev"}, cfg, DBDeps{}, testLogger()); err == nil {
		t.Fatal("expected an error for an empty session key")
	}
}
