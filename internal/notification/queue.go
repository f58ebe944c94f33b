package notification

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/octobees/lead-intel/internal/metrics"
)

// TaskLeadAlert is the asynq task type carrying a Job.
const TaskLeadAlert = "notification:lead_alert"

// NewLeadAlertTask encodes job as an asynq task.
func NewLeadAlertTask(job Job) (*asynq.Task, error) {
	data, err := json.Marshal(job)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadAlert, data), nil
}

// ParseLeadAlertPayload decodes the job carried by task.
func ParseLeadAlertPayload(task *asynq.Task) (Job, error) {
	var job Job
	if err := json.Unmarshal(task.Payload(), &job); err != nil {
		return Job{}, err
	}
	return job, nil
}

// RedisClientOpt converts a redis:// or rediss:// URL into asynq connection options.
func RedisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		tlsConfig = opt.TLSConfig.Clone()
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Username:  opt.Username,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueDispatcher hands jobs to the notifier worker through asynq. Tasks are
// enqueued with MaxRetry(0): a failed alert is logged once and never retried.
type QueueDispatcher struct {
	client enqueuer
	queue  string
	log    *zap.SugaredLogger
}

// NewQueueDispatcher builds a dispatcher publishing to queue.
func NewQueueDispatcher(client *asynq.Client, queue string, log *zap.SugaredLogger) *QueueDispatcher {
	return newQueueDispatcher(client, queue, log)
}

func newQueueDispatcher(client enqueuer, queue string, log *zap.SugaredLogger) *QueueDispatcher {
	if queue == "" {
		queue = "default"
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &QueueDispatcher{client: client, queue: queue, log: log}
}

// Dispatch enqueues the job. Enqueue failures are logged for manual follow-up.
func (d *QueueDispatcher) Dispatch(ctx context.Context, job Job) {
	task, err := NewLeadAlertTask(job)
	if err != nil {
		logDropped(d.log, job, fmt.Sprintf("encode task: %v", err))
		return
	}

	if _, err := d.client.EnqueueContext(context.WithoutCancel(ctx), task, asynq.Queue(d.queue), asynq.MaxRetry(0)); err != nil {
		logDropped(d.log, job, fmt.Sprintf("enqueue task: %v", err))
		return
	}
	metrics.NotificationsEnqueued.WithLabelValues("queue").Inc()
}

// Worker consumes lead alert tasks and runs them through a Notifier.
type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	notifier Notifier
	log      *zap.SugaredLogger
}

// NewWorker builds an asynq server bound to queue.
func NewWorker(opt asynq.RedisConnOpt, queue string, concurrency int, notifier Notifier, log *zap.SugaredLogger) *Worker {
	if queue == "" {
		queue = "default"
	}
	if concurrency < 1 {
		concurrency = 5
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
	})

	w := &Worker{
		server:   server,
		mux:      asynq.NewServeMux(),
		notifier: notifier,
		log:      log,
	}
	w.mux.HandleFunc(TaskLeadAlert, w.HandleLeadAlert)
	return w
}

// HandleLeadAlert runs one queued alert. Outcomes are already logged by the
// notifier, so a failed alert still completes the task.
func (w *Worker) HandleLeadAlert(ctx context.Context, task *asynq.Task) error {
	job, err := ParseLeadAlertPayload(task)
	if err != nil {
		w.log.Errorw("lead_alert_payload_invalid", "error", err)
		return fmt.Errorf("decode lead alert: %v: %w", err, asynq.SkipRetry)
	}
	w.notifier.Notify(ctx, job.input())
	return nil
}

// Run processes tasks until ctx is cancelled, then drains in-flight tasks.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start notifier worker: %w", err)
	}
	w.log.Infow("notifier_worker_started")

	<-ctx.Done()
	w.server.Shutdown()
	w.log.Infow("notifier_worker_stopped")
	return nil
}
