// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for PlacementHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: PLACEMENTHUB_MONGO_URI, PLACEMENTHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "placement_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must match the sign-in service)"},
	{Name: "session_name", Default: "placementhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime (e.g., 24h, 30m)"},

	// Company logos
	{Name: "asset_local_path", Default: "./uploads", Desc: "Directory uploaded company logos are stored in"},
	{Name: "asset_local_url", Default: "/files", Desc: "URL prefix for serving uploaded logos"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "localhost", Desc: "SMTP server host"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "placements@placementhub.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "PlacementHub", Desc: "From display name"},

	// Placement notices
	{Name: "notify_webhook_url", Default: "", Desc: "Optional URL that receives placement notices as JSON"},
	{Name: "notify_queue_size", Default: 256, Desc: "Placement notices buffered before new ones are dropped"},

	// Audit logging
	{Name: "audit_log_jobs", Default: "all", Desc: "Job event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Lifecycle policy
	{Name: "lock_round_results", Default: false, Desc: "Reject changes to a round once its results are recorded"},
	{Name: "apply_rate_limit", Default: 5, Desc: "Apply attempts allowed per student and job per window (0 disables)"},
	{Name: "apply_rate_window", Default: "1m", Desc: "Window for apply_rate_limit (e.g., 1m, 30s)"},

	// Deadlines
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for lists and single-job writes"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for multi-collection writes and uploads"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config files,
// environment variables (WAFFLE_* for core, PLACEMENTHUB_* for the app) and
// command-line flags, merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PLACEMENTHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),
		SessionMaxAge:    appValues.Duration("session_max_age", 24*time.Hour),

		AssetLocalPath: appValues.String("asset_local_path"),
		AssetLocalURL:  appValues.String("asset_local_url"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		NotifyWebhookURL: appValues.String("notify_webhook_url"),
		NotifyQueueSize:  appValues.Int("notify_queue_size"),

		AuditLogJobs: strings.ToLower(strings.TrimSpace(appValues.String("audit_log_jobs"))),

		LockRoundResults: appValues.Bool("lock_round_results"),
		ApplyRateLimit:   appValues.Int("apply_rate_limit"),
		ApplyRateWindow:  appValues.Duration("apply_rate_window", time.Minute),

		TimeoutShort:  appValues.Duration("timeout_short", timeouts.DefaultShort),
		TimeoutMedium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
		TimeoutLong:   appValues.Duration("timeout_long", timeouts.DefaultLong),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects configurations the service cannot run with,
// before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return fmt.Errorf("mongo_database must be set")
	}
	if strings.TrimSpace(appCfg.SessionKey) == "" {
		return fmt.Errorf("session_key must be set")
	}

	switch appCfg.AuditLogJobs {
	case "all", "db", "log", "off":
	default:
		return fmt.Errorf("audit_log_jobs must be one of all, db, log, off (got %q)", appCfg.AuditLogJobs)
	}

	if appCfg.NotifyQueueSize <= 0 {
		return fmt.Errorf("notify_queue_size must be positive (got %d)", appCfg.NotifyQueueSize)
	}
	if appCfg.ApplyRateLimit < 0 {
		return fmt.Errorf("apply_rate_limit must not be negative (got %d)", appCfg.ApplyRateLimit)
	}
	if appCfg.ApplyRateLimit > 0 && appCfg.ApplyRateWindow <= 0 {
		return fmt.Errorf("apply_rate_window must be positive when apply_rate_limit is set")
	}

	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == "dev-only-change-me-please-0123456789ABCDEF" {
		logger.Warn("running in prod with the development session key")
	}
	return nil
}
