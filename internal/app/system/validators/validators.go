// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/placementhub/internal/app/store/audit"
	jobstore "github.com/dalemusser/placementhub/internal/app/store/jobs"
	userstore "github.com/dalemusser/placementhub/internal/app/store/users"
	"github.com/dalemusser/placementhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates collections (if missing) and tries to attach JSON-Schema
// validators. Servers that don't support collMod are logged and skipped.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	ensure := func(coll string, schema bson.M) {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			return
		}
		if schema == nil {
			return
		}
		if err := setValidator(ctx, db, coll, schema); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				return
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	ensure(userstore.Collection, usersSchema())
	ensure(jobstore.Collection, jobsSchema())
	ensure(audit.Collection, nil)

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	if err := db.RunCommand(ctx, cmd).Err(); err != nil {
		return err
	}
	zap.L().Info("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandMatches(err error, code int32, needles ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandMatches(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var objectIDArray = bson.M{"bsonType": "array", "items": bson.M{"bsonType": "objectId"}}

func usersSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"name", "email", "role", "status"},
			"properties": bson.M{
				"name":   bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"email":  bson.M{"bsonType": "string", "minLength": 3},
				"role":   bson.M{"enum": bson.A{models.RoleStudent, models.RoleInstitutionAdmin, models.RoleGlobalAdmin}},
				"status": bson.M{"enum": bson.A{models.StatusActive, models.StatusDisabled}},
				"profile": bson.M{
					"bsonType": "object",
					"properties": bson.M{
						"applied_jobs_history": bson.M{
							"bsonType": "array",
							"items": bson.M{
								"bsonType": "object",
								"required": bson.A{"job_id", "applied_on"},
								"properties": bson.M{
									"job_id":     bson.M{"bsonType": "objectId"},
									"applied_on": bson.M{"bsonType": "date"},
								},
							},
						},
					},
				},
			},
		},
	}
}

func jobsSchema() bson.M {
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType": "object",
			"required": bson.A{"title", "company", "type", "institution_id", "eligible_students",
				"applied_students", "total_applications", "rounds", "placements", "version"},
			"properties": bson.M{
				"title":              bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"},
				"company":            bson.M{"bsonType": "string", "minLength": 1},
				"type":               bson.M{"enum": bson.A{models.JobTypeJob, models.JobTypeInternship}},
				"institution_id":     bson.M{"bsonType": "objectId"},
				"eligible_students":  bson.M{"bsonType": "array"},
				"applied_students":   bson.M{"bsonType": "array"},
				"total_applications": bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 0},
				"version":            bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
				"rounds": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"_id", "index", "name"},
						"properties": bson.M{
							"index":                bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1},
							"qualified_students":   objectIDArray,
							"unqualified_students": objectIDArray,
							"absent_students":      objectIDArray,
						},
					},
				},
				"placements": bson.M{
					"bsonType": "array",
					"items": bson.M{
						"bsonType": "object",
						"required": bson.A{"student_id", "package_amount", "placed_on"},
						"properties": bson.M{
							"student_id":     bson.M{"bsonType": "objectId"},
							"package_amount": bson.M{"bsonType": bson.A{"double", "int", "long", "decimal"}, "exclusiveMinimum": 0},
						},
					},
				},
			},
		},
	}
}
