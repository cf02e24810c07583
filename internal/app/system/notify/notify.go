// internal/app/system/notify/notify.go
//
// Package notify delivers placement notifications off the request path.
// Placements are committed before a notice is queued, so a slow or failing
// sink never affects the write.
package notify

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PlacementNotice carries everything a sink needs to tell a student about
// a placement.
type PlacementNotice struct {
	InstitutionID primitive.ObjectID `json:"institution_id"`
	JobID         primitive.ObjectID `json:"job_id"`
	JobTitle      string             `json:"job_title"`
	Company       string             `json:"company"`
	Location      string             `json:"location,omitempty"`
	JobType       string             `json:"job_type,omitempty"`
	StudentID     primitive.ObjectID `json:"student_id"`
	StudentName   string             `json:"student_name"`
	StudentEmail  string             `json:"student_email"`
	PackageAmount float64            `json:"package_amount"`
	PlacedOn      time.Time          `json:"placed_on"`
}

// Sink delivers a notice through one channel.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n PlacementNotice) error
}

// Notifier is what the placement service depends on.
type Notifier interface {
	Enqueue(n PlacementNotice) bool
}

// Dispatcher is a background worker that drains a bounded queue of notices
// into every configured sink.
type Dispatcher struct {
	queue   chan PlacementNotice
	sinks   []Sink
	log     *zap.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher with a queue of size entries. Each
// delivery attempt gets timeout.
func NewDispatcher(size int, timeout time.Duration, logger *zap.Logger, sinks ...Sink) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		queue:   make(chan PlacementNotice, size),
		sinks:   sinks,
		log:     logger,
		timeout: timeout,
	}
}

// Start begins the delivery loop.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
	names := make([]string, 0, len(d.sinks))
	for _, s := range d.sinks {
		names = append(names, s.Name())
	}
	d.log.Info("notification dispatcher started",
		zap.Int("queue_size", cap(d.queue)),
		zap.Strings("sinks", names))
}

// Stop rejects new notices, delivers what is already queued and waits for
// the loop to finish or ctx to end.
func (d *Dispatcher) Stop(ctx context.Context) {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.log.Info("notification dispatcher stopped")
	case <-ctx.Done():
		d.log.Warn("notification dispatcher stop timed out", zap.Int("pending", len(d.queue)))
	}
}

// Enqueue queues n without blocking. It returns false if the queue is full
// or the dispatcher is stopped; the notice is dropped and logged.
func (d *Dispatcher) Enqueue(n PlacementNotice) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.log.Warn("notification dropped: dispatcher stopped",
			zap.String("job_id", n.JobID.Hex()),
			zap.String("student_id", n.StudentID.Hex()))
		return false
	}
	select {
	case d.queue <- n:
		return true
	default:
		d.log.Warn("notification dropped: queue full",
			zap.String("job_id", n.JobID.Hex()),
			zap.String("student_id", n.StudentID.Hex()))
		return false
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for n := range d.queue {
		d.deliver(n)
	}
}

func (d *Dispatcher) deliver(n PlacementNotice) {
	for _, s := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := s.Deliver(ctx, n)
		cancel()
		if err != nil {
			d.log.Error("placement notification failed",
				zap.String("sink", s.Name()),
				zap.String("job_id", n.JobID.Hex()),
				zap.String("student_id", n.StudentID.Hex()),
				zap.Error(err))
			continue
		}
		d.log.Info("placement notification sent",
			zap.String("sink", s.Name()),
			zap.String("job_id", n.JobID.Hex()),
			zap.String("student_id", n.StudentID.Hex()))
	}
}
