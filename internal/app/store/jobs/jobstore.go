// internal/app/store/jobs/jobstore.go
package jobstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/placementhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the jobs collection.
const Collection = "jobs"

var (
	ErrNotFound = errors.New("job not found")
	// ErrVersionConflict means the job changed since it was read.
	ErrVersionConflict = errors.New("job was modified concurrently")
)

// Store persists Job aggregates. Every write replaces the whole document
// and is conditional on the version that was read.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts a new job at version 1.
func (s *Store) Create(ctx context.Context, job models.Job) (models.Job, error) {
	now := time.Now().UTC()
	if job.ID.IsZero() {
		job.ID = primitive.NewObjectID()
	}
	job.TitleCI = text.Fold(job.Title)
	job.CompanyCI = text.Fold(job.Company)
	if job.EligibleStudents == nil {
		job.EligibleStudents = []models.StudentSnapshot{}
	}
	if job.AppliedStudents == nil {
		job.AppliedStudents = []models.StudentSnapshot{}
	}
	if job.Rounds == nil {
		job.Rounds = []models.Round{}
	}
	if job.Placements == nil {
		job.Placements = []models.Placement{}
	}
	job.TotalApplications = len(job.AppliedStudents)
	job.Version = 1
	job.CreatedAt = now
	job.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, job); err != nil {
		return models.Job{}, err
	}
	return job, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Job, error) {
	var job models.Job
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&job)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Job{}, ErrNotFound
	}
	if err != nil {
		return models.Job{}, err
	}
	return job, nil
}

// Replace writes job if the stored version still equals job.Version and
// returns the job as stored, with its version advanced.
func (s *Store) Replace(ctx context.Context, job models.Job) (models.Job, error) {
	expected := job.Version
	job.Version = expected + 1
	job.UpdatedAt = time.Now().UTC()
	job.TotalApplications = len(job.AppliedStudents)

	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": job.ID, "version": expected}, job)
	if err != nil {
		return models.Job{}, err
	}
	if res.MatchedCount == 0 {
		n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": job.ID})
		if cerr == nil && n == 0 {
			return models.Job{}, ErrNotFound
		}
		return models.Job{}, ErrVersionConflict
	}
	return job, nil
}

// Delete removes the job if its stored version still equals version.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, version int64) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "version": version})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		n, cerr := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if cerr == nil && n == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

// Reinsert puts a deleted job back unchanged.
func (s *Store) Reinsert(ctx context.Context, job models.Job) error {
	_, err := s.c.InsertOne(ctx, job)
	return err
}

// ListByInstitution returns an institution's jobs, newest posting first.
func (s *Store) ListByInstitution(ctx context.Context, institutionID primitive.ObjectID) ([]models.Job, error) {
	return s.find(ctx, bson.M{"institution_id": institutionID})
}

// ListEligibleFor returns jobs that list studentID as eligible.
func (s *Store) ListEligibleFor(ctx context.Context, studentID primitive.ObjectID) ([]models.Job, error) {
	return s.find(ctx, bson.M{"eligible_students.student_id": studentID})
}

// ListAppliedBy returns jobs studentID has applied to.
func (s *Store) ListAppliedBy(ctx context.Context, studentID primitive.ObjectID) ([]models.Job, error) {
	return s.find(ctx, bson.M{"applied_students.student_id": studentID})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Job, error) {
	opts := options.Find().SetSort(bson.D{{Key: "job_date", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	jobs := []models.Job{}
	if err := cur.All(ctx, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}
