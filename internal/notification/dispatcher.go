package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/octobees/lead-intel/internal/entity"
	"github.com/octobees/lead-intel/internal/metrics"
)

// Job is a lead alert handed to a background dispatcher. When OfficerID is set the
// officer's phone is looked up when the job runs, with Phone as the fallback.
type Job struct {
	Lead      entity.Lead `json:"lead"`
	Phone     string      `json:"phone"`
	OfficerID string      `json:"officer_id,omitempty"`
	LeadURL   string      `json:"lead_url"`
}

func (j Job) input() NotifyInput {
	return NotifyInput{Lead: j.Lead, Phone: j.Phone, OfficerID: j.OfficerID, LeadURL: j.LeadURL}
}

// Dispatcher starts a lead alert without waiting for it. Implementations must not
// block on the provider and must not report the outcome back to the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, job Job)
}

// AsyncDispatcher runs each job in its own goroutine.
type AsyncDispatcher struct {
	notifier Notifier
	log      *zap.SugaredLogger
	mu       sync.Mutex
	wg       sync.WaitGroup
	closed   bool
}

// NewAsyncDispatcher builds an in-process dispatcher around notifier.
func NewAsyncDispatcher(notifier Notifier, log *zap.SugaredLogger) *AsyncDispatcher {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &AsyncDispatcher{notifier: notifier, log: log}
}

// Dispatch detaches the job from ctx's cancellation so that a finished request
// does not abort the provider call.
func (d *AsyncDispatcher) Dispatch(ctx context.Context, job Job) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		logDropped(d.log, job, "dispatcher closed")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()
	metrics.NotificationsEnqueued.WithLabelValues("async").Inc()

	detached := context.WithoutCancel(ctx)
	go func() {
		defer d.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				d.log.Errorw("lead_alert_panic", "panic", r, "lead_id", job.Lead.ID, "phone", job.Phone, "officer_id", job.OfficerID)
			}
		}()
		d.notifier.Notify(detached, job.input())
	}()
}

// Close stops accepting jobs and waits for in-flight ones until ctx is done.
func (d *AsyncDispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func logDropped(log *zap.SugaredLogger, job Job, reason string) {
	log.Warnw("lead_alert_failed",
		"phone", job.Phone,
		"officer_id", job.OfficerID,
		"lead_id", job.Lead.ID,
		"company", entity.Value(job.Lead.CompanyName),
		"timestamp", time.Now().UTC().Format(time.RFC3339),
		"error", reason,
	)
}
