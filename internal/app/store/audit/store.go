// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the audit events collection.
const Collection = "audit_events"

// CategoryJobs covers every job lifecycle event.
const CategoryJobs = "jobs"

// Job lifecycle event types.
const (
	EventJobCreated           = "job_created"
	EventJobDeleted           = "job_deleted"
	EventJobLogoUpdated       = "job_logo_updated"
	EventStudentApplied       = "student_applied"
	EventRoundsCreated        = "rounds_created"
	EventRoundResultsRecorded = "round_results_recorded"
	EventPlacementAdded       = "placement_added"
)

// Event represents an audit event.
type Event struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	Timestamp     time.Time           `bson:"timestamp"`
	InstitutionID *primitive.ObjectID `bson:"institution_id,omitempty"`

	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	JobID     *primitive.ObjectID `bson:"job_id,omitempty"`
	StudentID *primitive.ObjectID `bson:"student_id,omitempty"` // affected student
	ActorID   *primitive.ObjectID `bson:"actor_id,omitempty"`   // who performed the action

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty"`
}

// QueryFilter narrows Query. Zero fields are ignored.
type QueryFilter struct {
	InstitutionID *primitive.ObjectID
	JobID         *primitive.ObjectID
	StudentID     *primitive.ObjectID
	EventType     string
	Since         *time.Time
	Limit         int64
}

// Store manages audit event records.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// EnsureIndexes creates the indexes Query relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "institution_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "job_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "student_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Query returns matching events, most recent first. Limit defaults to 100.
func (s *Store) Query(ctx context.Context, f QueryFilter) ([]Event, error) {
	query := bson.M{}
	if f.InstitutionID != nil {
		query["institution_id"] = f.InstitutionID
	}
	if f.JobID != nil {
		query["job_id"] = f.JobID
	}
	if f.StudentID != nil {
		query["student_id"] = f.StudentID
	}
	if f.EventType != "" {
		query["event_type"] = f.EventType
	}
	if f.Since != nil {
		query["timestamp"] = bson.M{"$gte": *f.Since}
	}

	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
