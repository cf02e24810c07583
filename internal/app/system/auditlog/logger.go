// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"strconv"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config holds audit logging configuration.
type Config struct {
	// Jobs controls logging for job lifecycle events.
	// Values: "all" (MongoDB + zap), "db" (MongoDB only), "log" (zap only), "off" (disabled)
	Jobs string
}

// Logger records job lifecycle events to the audit store and to zap.
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{store: store, zapLog: zapLog, config: config}
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}
	if event.InstitutionID != nil {
		fields = append(fields, zap.String("institution_id", event.InstitutionID.Hex()))
	}
	if event.JobID != nil {
		fields = append(fields, zap.String("job_id", event.JobID.Hex()))
	}
	if event.StudentID != nil {
		fields = append(fields, zap.String("student_id", event.StudentID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the configured destination. A nil Logger
// is a no-op.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	setting := "all"
	if event.Category == audit.CategoryJobs && l.config.Jobs != "" {
		setting = l.config.Jobs
	}
	if setting == "off" {
		return
	}
	if setting == "all" || setting == "log" {
		l.logToZap(event)
	}
	if (setting == "all" || setting == "db") && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

func (l *Logger) jobEvent(ctx context.Context, eventType string, actor primitive.ObjectID, job models.Job, student *primitive.ObjectID, details map[string]string) {
	inst := job.InstitutionID
	jobID := job.ID
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryJobs,
		EventType:     eventType,
		InstitutionID: &inst,
		JobID:         &jobID,
		StudentID:     student,
		ActorID:       &actor,
		Success:       true,
		Details:       details,
	})
}

// JobCreated logs a new posting and the size of its eligible pool.
func (l *Logger) JobCreated(ctx context.Context, actor primitive.ObjectID, job models.Job) {
	l.jobEvent(ctx, audit.EventJobCreated, actor, job, nil, map[string]string{
		"title":          job.Title,
		"company":        job.Company,
		"eligible_count": strconv.Itoa(len(job.EligibleStudents)),
	})
}

// JobDeleted logs a deletion and how many student histories were cleaned.
func (l *Logger) JobDeleted(ctx context.Context, actor primitive.ObjectID, job models.Job, historiesRemoved int64) {
	l.jobEvent(ctx, audit.EventJobDeleted, actor, job, nil, map[string]string{
		"title":             job.Title,
		"histories_removed": strconv.FormatInt(historiesRemoved, 10),
	})
}

func (l *Logger) LogoUpdated(ctx context.Context, actor primitive.ObjectID, job models.Job) {
	l.jobEvent(ctx, audit.EventJobLogoUpdated, actor, job, nil, map[string]string{"logo": job.Logo})
}

func (l *Logger) StudentApplied(ctx context.Context, job models.Job, student primitive.ObjectID) {
	l.jobEvent(ctx, audit.EventStudentApplied, student, job, &student, map[string]string{
		"total_applications": strconv.Itoa(job.TotalApplications),
	})
}

func (l *Logger) RoundsCreated(ctx context.Context, actor primitive.ObjectID, job models.Job, created []models.Round) {
	first, last := 0, 0
	if len(created) > 0 {
		first, last = created[0].Index, created[len(created)-1].Index
	}
	l.jobEvent(ctx, audit.EventRoundsCreated, actor, job, nil, map[string]string{
		"count":       strconv.Itoa(len(created)),
		"first_index": strconv.Itoa(first),
		"last_index":  strconv.Itoa(last),
	})
}

func (l *Logger) RoundResultsRecorded(ctx context.Context, actor primitive.ObjectID, job models.Job, round models.Round) {
	l.jobEvent(ctx, audit.EventRoundResultsRecorded, actor, job, nil, map[string]string{
		"round_id":    round.ID.Hex(),
		"round_index": strconv.Itoa(round.Index),
		"qualified":   strconv.Itoa(len(round.QualifiedStudents)),
		"unqualified": strconv.Itoa(len(round.UnqualifiedStudents)),
		"absent":      strconv.Itoa(len(round.AbsentStudents)),
	})
}

func (l *Logger) PlacementAdded(ctx context.Context, actor primitive.ObjectID, job models.Job, p models.Placement) {
	student := p.StudentID
	l.jobEvent(ctx, audit.EventPlacementAdded, actor, job, &student, map[string]string{
		"package_amount": strconv.FormatFloat(p.PackageAmount, 'f', -1, 64),
	})
}
