// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/placementhub/internal/app/system/normalize"
	"github.com/dalemusser/placementhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the name of the users collection.
const Collection = "users"

var (
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when creating a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	// ErrHistoryExists means the student already has a history entry for the job.
	ErrHistoryExists = errors.New("application history entry already exists")
	// ErrHistoryMissing means no matching history entry was found to update.
	ErrHistoryMissing = errors.New("application history entry not found")

	errBadRole        = errors.New(`role must be "student"|"institution_admin"|"global_admin"`)
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
	errInstitutionReq = errors.New("students and institution admins must have institution_id")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection(Collection)}
}

// Create inserts a new user after normalizing and validating fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Name = normalize.Name(u.Name)
	u.NameCI = text.Fold(u.Name)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	u.Status = normalize.Status(u.Status)
	if u.Status == "" {
		u.Status = models.StatusActive
	}

	switch u.Role {
	case models.RoleStudent, models.RoleInstitutionAdmin, models.RoleGlobalAdmin:
	default:
		return models.User{}, errBadRole
	}
	if u.Status != models.StatusActive && u.Status != models.StatusDisabled {
		return models.User{}, errBadStatus
	}
	if u.Role != models.RoleGlobalAdmin && u.InstitutionID == nil {
		return models.User{}, errInstitutionReq
	}
	if u.Role == models.RoleStudent {
		if u.Profile == nil {
			u.Profile = &models.StudentProfile{}
		}
		if u.Profile.AppliedJobsHistory == nil {
			u.Profile.AppliedJobsHistory = []models.ApplicationHistoryEntry{}
		}
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// GetByIDs loads multiple users. Missing ids are skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// StudentsByInstitution returns the active students of an institution in
// insertion order. This is the candidate pool for eligibility.
func (s *Store) StudentsByInstitution(ctx context.Context, institutionID primitive.ObjectID) ([]models.User, error) {
	filter := bson.M{
		"institution_id": institutionID,
		"role":           models.RoleStudent,
		"status":         bson.M{"$ne": models.StatusDisabled},
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	users := []models.User{}
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AddHistory appends entry to the student's application history unless an
// entry for the same job already exists.
func (s *Store) AddHistory(ctx context.Context, studentID primitive.ObjectID, entry models.ApplicationHistoryEntry) error {
	filter := bson.M{
		"_id":                                studentID,
		"profile.applied_jobs_history.job_id": bson.M{"$ne": entry.JobID},
	}
	update := bson.M{
		"$push": bson.M{"profile.applied_jobs_history": entry},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.missOrExists(ctx, studentID, ErrHistoryExists)
	}
	return nil
}

// RemoveHistory drops the student's history entry for jobID.
func (s *Store) RemoveHistory(ctx context.Context, studentID, jobID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": studentID},
		bson.M{
			"$pull": bson.M{"profile.applied_jobs_history": bson.M{"job_id": jobID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	return err
}

// SetPlacement mirrors a placement into the student's history entry for
// jobID. It fails with ErrHistoryMissing if there is no entry or the entry
// already carries a placement.
func (s *Store) SetPlacement(ctx context.Context, studentID, jobID primitive.ObjectID, rec models.PlacementRecord) error {
	filter := bson.M{
		"_id": studentID,
		"profile.applied_jobs_history": bson.M{"$elemMatch": bson.M{
			"job_id":    jobID,
			"placement": bson.M{"$exists": false},
		}},
	}
	update := bson.M{"$set": bson.M{
		"profile.applied_jobs_history.$.placement": rec,
		"updated_at":                               time.Now().UTC(),
	}}
	res, err := s.c.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return s.missOrExists(ctx, studentID, ErrHistoryMissing)
	}
	return nil
}

// ClearPlacement removes the mirrored placement for jobID.
func (s *Store) ClearPlacement(ctx context.Context, studentID, jobID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": studentID, "profile.applied_jobs_history.job_id": jobID},
		bson.M{
			"$unset": bson.M{"profile.applied_jobs_history.$.placement": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		})
	return err
}

// PullJobFromHistories removes every history entry for jobID across all
// students. Returns the number of students modified.
func (s *Store) PullJobFromHistories(ctx context.Context, jobID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"profile.applied_jobs_history.job_id": jobID},
		bson.M{
			"$pull": bson.M{"profile.applied_jobs_history": bson.M{"job_id": jobID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// RestoreHistories puts back history entries removed by
// PullJobFromHistories. Keys are student ids.
func (s *Store) RestoreHistories(ctx context.Context, entries map[primitive.ObjectID]models.ApplicationHistoryEntry) error {
	var firstErr error
	for studentID, entry := range entries {
		if err := s.AddHistory(ctx, studentID, entry); err != nil && !errors.Is(err, ErrHistoryExists) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// HistoriesForJob returns every student's history entry for jobID, keyed by
// student id.
func (s *Store) HistoriesForJob(ctx context.Context, jobID primitive.ObjectID) (map[primitive.ObjectID]models.ApplicationHistoryEntry, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"profile.applied_jobs_history.job_id": jobID},
		options.Find().SetProjection(bson.M{"_id": 1, "profile.applied_jobs_history": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := map[primitive.ObjectID]models.ApplicationHistoryEntry{}
	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		if h, ok := u.History(jobID); ok {
			out[u.ID] = h
		}
	}
	return out, cur.Err()
}

func (s *Store) missOrExists(ctx context.Context, studentID primitive.ObjectID, otherwise error) error {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": studentID})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return otherwise
}
