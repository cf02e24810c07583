// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for PlacementHub.
//
// Values come from environment variables (PLACEMENTHUB_*), configuration
// files, or command-line flags, loaded in LoadConfig. WAFFLE's CoreConfig
// carries the framework-level settings (ports, TLS, log level, env); this
// struct carries everything the placement office itself needs.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie issued by the campus sign-in service
	SessionKey    string        // Secret key for verifying session cookies
	SessionName   string        // Cookie name (default: placementhub-session)
	SessionDomain string        // Cookie domain (blank means current host)
	SessionMaxAge time.Duration // Cookie lifetime

	// Company logo storage
	AssetLocalPath string // Directory logos are written to (e.g., "./uploads")
	AssetLocalURL  string // URL prefix logos are served under (e.g., "/files")

	// Email/SMTP configuration for placement notices
	MailSMTPHost string // SMTP server host (e.g., localhost for Mailpit)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string
	MailSMTPPass string
	MailFrom     string // From email address
	MailFromName string // From display name, also used as the site name in notices

	// Placement notices
	NotifyWebhookURL string // Optional endpoint that also receives each notice as JSON
	NotifyQueueSize  int    // Buffered notices before new ones are dropped

	// Audit logging: 'all' (db+log), 'db', 'log', or 'off'
	AuditLogJobs string

	// Job lifecycle policy
	LockRoundResults bool          // Reject re-recording results for a round that has them
	ApplyRateLimit   int           // Apply attempts per student and job per window (0 disables)
	ApplyRateWindow  time.Duration // Window for ApplyRateLimit

	// Operation deadlines (zero keeps the default)
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
