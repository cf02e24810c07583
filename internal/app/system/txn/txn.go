// internal/app/system/txn/txn.go
//
// Package txn runs multi-document writes atomically when the deployment
// supports transactions and falls back to ordered steps with compensation
// when it does not (standalone servers used in development and tests).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Run executes fn inside a transaction. If the server cannot run
// transactions, fn is run once without one.
func Run(ctx context.Context, db *mongo.Database, log *zap.Logger, fn func(ctx context.Context) error) error {
	err := withTransaction(ctx, db, fn)
	if err == nil || !IsNotSupported(err) {
		return err
	}
	log.Debug("transactions not supported; running without one", zap.Error(err))
	return fn(ctx)
}

// Step is one write of a multi-document change. Undo reverses Do and is
// only used when transactions are unavailable.
type Step struct {
	Name string
	Do   func(ctx context.Context) error
	Undo func(ctx context.Context) error
}

// RunSteps applies steps in order. With transaction support they commit or
// abort together. Without it, a failing step triggers Undo of every step
// that already succeeded, in reverse order, and the step's error is
// returned.
func RunSteps(ctx context.Context, db *mongo.Database, log *zap.Logger, steps ...Step) error {
	err := withTransaction(ctx, db, func(ctx context.Context) error {
		for _, s := range steps {
			if err := s.Do(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil || !IsNotSupported(err) {
		return err
	}
	log.Debug("transactions not supported; running steps with compensation", zap.Error(err))
	return runCompensated(ctx, log, steps)
}

func runCompensated(ctx context.Context, log *zap.Logger, steps []Step) error {
	for i, s := range steps {
		err := s.Do(ctx)
		if err == nil {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			undo := steps[j]
			if undo.Undo == nil {
				continue
			}
			// Compensation must run even if the caller's context is done.
			if uerr := undo.Undo(context.WithoutCancel(ctx)); uerr != nil {
				log.Error("compensation failed; data may be inconsistent",
					zap.String("step", undo.Name),
					zap.String("failed_step", s.Name),
					zap.Error(uerr))
			}
		}
		return err
	}
	return nil
}

func withTransaction(ctx context.Context, db *mongo.Database, fn func(ctx context.Context) error) error {
	sess, err := db.Client().StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// IsNotSupported reports whether err means the server cannot run
// multi-document transactions.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		switch ce.Code {
		case 20, 51, 263: // IllegalOperation, no replica set, OperationNotSupportedInTransaction
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	has := func(s string) bool { return strings.Contains(msg, s) }
	switch {
	case has("transaction") && has("replica set"):
		return true
	case has("not supported") && (has("session") || has("transaction")):
		return true
	case has("transaction") && has("session"):
		return true
	case has("illegal operation"):
		return true
	}
	return false
}
