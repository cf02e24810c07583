// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"strings"

	auditlogfeature "github.com/dalemusser/placementhub/internal/app/features/auditlog"
	healthfeature "github.com/dalemusser/placementhub/internal/app/features/health"
	jobsfeature "github.com/dalemusser/placementhub/internal/app/features/jobs"
	placementsfeature "github.com/dalemusser/placementhub/internal/app/features/placements"
	roundsfeature "github.com/dalemusser/placementhub/internal/app/features/rounds"
	studentjobsfeature "github.com/dalemusser/placementhub/internal/app/features/studentjobs"
	"github.com/dalemusser/placementhub/internal/app/placement"
	"github.com/dalemusser/placementhub/internal/app/store/audit"
	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/app/system/auditlog"
	"github.com/dalemusser/placementhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for PlacementHub.
//
// WAFFLE calls this after configuration, DB connections, schema setup and
// Startup have completed. It builds the placement service from the
// back-end deps, installs the session middleware and mounts the feature
// routers:
//
//	/health                       liveness and MongoDB reachability
//	/jobs                         postings, applications, applicants, logos
//	/jobs/{jobId}/rounds          interview rounds and results
//	/jobs/{jobId}/placements      offers
//	/me                           the signed-in student's applications and notifications
//	/audit                        job lifecycle audit trail for admins
//	<asset_local_url>/*           uploaded logos
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Re-read the user on each request so role changes and disabled
	// accounts take effect immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	logoPrefix := "/" + strings.Trim(appCfg.AssetLocalURL, "/")
	logos, err := storage.NewLocal(storage.LocalConfig{
		BasePath: appCfg.AssetLocalPath,
		BaseURL:  logoPrefix,
	})
	if err != nil {
		logger.Error("asset store init failed", zap.String("path", appCfg.AssetLocalPath), zap.Error(err))
		return nil, err
	}

	svc := placement.New(placement.Deps{
		DB:           deps.MongoDatabase,
		Log:          logger,
		Audit:        auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{Jobs: appCfg.AuditLogJobs}),
		Notifier:     deps.Notices,
		Assets:       logos,
		ApplyLimiter: deps.ApplyLimiter,
	}, placement.Config{
		LockRoundResults: appCfg.LockRoundResults,
	})

	r := chi.NewRouter()

	// Loads the SessionUser into context when the cookie is valid.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Uploaded logos
	r.Handle(logoPrefix+"/*", fileserver.Handler(logoPrefix, appCfg.AssetLocalPath))

	jobsRouter := jobsfeature.Routes(jobsfeature.NewHandler(svc, logger), sessionMgr)
	jobsRouter.Mount("/{jobId}/rounds", roundsfeature.Routes(roundsfeature.NewHandler(svc, logger), sessionMgr))
	jobsRouter.Mount("/{jobId}/placements", placementsfeature.Routes(placementsfeature.NewHandler(svc, logger), sessionMgr))
	r.Mount("/jobs", jobsRouter)

	r.Mount("/me", studentjobsfeature.Routes(studentjobsfeature.NewHandler(svc, logger), sessionMgr))

	r.Mount("/audit", auditlogfeature.Routes(auditlogfeature.NewHandler(deps.MongoDatabase, logger), sessionMgr))

	return r, nil
}
