package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"traveldesk/internal/middleware"
	"traveldesk/internal/models"

	"github.com/redis/go-redis/v9"
)

// QueueKey is the Redis list holding pending status-change mail jobs.
const QueueKey = "mail:status_changed"

const popTimeout = 5 * time.Second

// Queue is a Redis-list-backed mail job queue. Producers push with
// DispatchStatusChanged; a worker goroutine drains it with Run. Delivery is
// best-effort: a committed status change never rolls back because mail
// failed, and jobs that exhaust their retries are logged and dropped.
type Queue struct {
	rdb        *redis.Client
	mailer     Mailer
	maxRetries int
}

// NewQueue creates a mail queue. rdb may be nil, in which case dispatch is
// a no-op (the API still works without Redis, it just cannot notify).
func NewQueue(rdb *redis.Client, mailer Mailer, maxRetries int) *Queue {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &Queue{rdb: rdb, mailer: mailer, maxRetries: maxRetries}
}

// DispatchStatusChanged enqueues a notification for a committed status
// transition. Errors are returned for logging only; callers must not fail
// the transition on them.
func (q *Queue) DispatchStatusChanged(ctx context.Context, tr *models.TravelRequest, previous models.TravelRequestStatus) error {
	if q.rdb == nil {
		return nil
	}
	job := NewStatusChangedJob(tr, previous)
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, QueueKey, payload).Err()
}

// Run drains the queue until ctx is cancelled. Intended to be started as a
// goroutine by the server (or as the standalone worker binary).
func (q *Queue) Run(ctx context.Context) {
	if q.rdb == nil {
		middleware.Logger.Warn("mail queue disabled: no Redis client")
		return
	}
	middleware.Logger.Info("mail queue worker started")

	for {
		select {
		case <-ctx.Done():
			middleware.Logger.Info("mail queue worker stopped")
			return
		default:
		}

		res, err := q.rdb.BRPop(ctx, popTimeout, QueueKey).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			middleware.Logger.Error("mail queue pop failed", slog.String("error", err.Error()))
			// Back off so a dead Redis does not spin the loop.
			select {
			case <-ctx.Done():
				return
			case <-time.After(popTimeout):
			}
			continue
		}
		// BRPop returns [key, value].
		if len(res) != 2 {
			continue
		}
		q.process(ctx, []byte(res[1]))
	}
}

func (q *Queue) process(ctx context.Context, payload []byte) {
	var job StatusChangedJob
	if err := json.Unmarshal(payload, &job); err != nil {
		middleware.Logger.Error("mail queue: dropping malformed job", slog.String("error", err.Error()))
		middleware.MailJobs.WithLabelValues("dropped").Inc()
		return
	}

	if job.OwnerEmail == "" {
		middleware.Logger.Warn("mail queue: dropping job without recipient",
			slog.Any("travel_request_id", job.TravelRequestID))
		middleware.MailJobs.WithLabelValues("dropped").Inc()
		return
	}

	mail, err := RenderStatusMail(job)
	if err != nil {
		middleware.Logger.Error("mail queue: dropping unrenderable job",
			slog.Any("travel_request_id", job.TravelRequestID),
			slog.String("error", err.Error()))
		middleware.MailJobs.WithLabelValues("dropped").Inc()
		return
	}

	if err := q.mailer.Send(ctx, mail); err != nil {
		q.retry(ctx, job, err)
		return
	}

	middleware.MailJobs.WithLabelValues("sent").Inc()
	middleware.Logger.InfoContext(ctx, "status notification sent",
		slog.Any("travel_request_id", job.TravelRequestID),
		slog.String("owner_email", job.OwnerEmail),
		slog.String("previous_status", string(job.PreviousStatus)),
		slog.String("new_status", string(job.NewStatus)),
	)
}

func (q *Queue) retry(ctx context.Context, job StatusChangedJob, cause error) {
	job.Attempts++
	if job.Attempts >= q.maxRetries {
		middleware.MailJobs.WithLabelValues("dropped").Inc()
		middleware.Logger.Error("status notification failed permanently",
			slog.Any("travel_request_id", job.TravelRequestID),
			slog.String("owner_email", job.OwnerEmail),
			slog.Int("attempts", job.Attempts),
			slog.String("error", cause.Error()),
		)
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		middleware.Logger.Error("mail queue: failed to re-enqueue job", slog.String("error", err.Error()))
		return
	}
	if err := q.rdb.LPush(ctx, QueueKey, payload).Err(); err != nil {
		middleware.Logger.Error("mail queue: failed to re-enqueue job", slog.String("error", err.Error()))
		return
	}
	middleware.MailJobs.WithLabelValues("retried").Inc()
	middleware.Logger.WarnContext(ctx, "status notification send failed, retrying",
		slog.Any("travel_request_id", job.TravelRequestID),
		slog.Int("attempts", job.Attempts),
		slog.String("error", cause.Error()),
	)
}
