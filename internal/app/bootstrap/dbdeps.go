// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/placementhub/internal/app/system/notify"
	"github.com/dalemusser/placementhub/internal/app/system/ratelimit"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the back-end dependencies built once at startup and torn
// down in Shutdown.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Notices is the placement notice queue; Startup starts it.
	Notices *notify.Dispatcher
	// ApplyLimiter throttles apply attempts per student.
	ApplyLimiter *ratelimit.Limiter
}
