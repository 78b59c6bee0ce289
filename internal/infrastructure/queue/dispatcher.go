package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/rbac-labs/user-service/internal/api/metrics"
	"github.com/rbac-labs/user-service/internal/core/domain"
	"github.com/rbac-labs/user-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// auditJob is either a decision or a login record; exactly one side is set.
type auditJob struct {
	decision *domain.DecisionRecord
	login    *domain.LoginRecord
}

// AuditDispatcher is the asynchronous ports.AuditSink. Records are enqueued
// without blocking and written by a fixed set of workers; events for the same
// actor hash to the same worker so one actor's trail stays in order. When a
// worker channel is full the record is dropped and counted rather than
// stalling the request path: the sink is best-effort by contract.
type AuditDispatcher struct {
	workers []chan auditJob
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan auditJob, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan auditJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// RecordDecision enqueues a decision record. Never blocks.
func (d *AuditDispatcher) RecordDecision(rec domain.DecisionRecord) {
	metrics.AuthzDecisionsTotal.WithLabelValues(string(rec.Action), string(rec.Outcome), string(rec.Reason)).Inc()
	key := "anonymous"
	if rec.ActorID != nil {
		key = strconv.FormatInt(*rec.ActorID, 10)
	}
	d.enqueue(key, auditJob{decision: &rec})
}

// RecordLogin enqueues a login-attempt record. Never blocks.
func (d *AuditDispatcher) RecordLogin(rec domain.LoginRecord) {
	result := "failure"
	if rec.Success {
		result = "success"
	}
	metrics.LoginAttemptsTotal.WithLabelValues(result).Inc()
	d.enqueue(rec.Email, auditJob{login: &rec})
}

func (d *AuditDispatcher) enqueue(key string, job auditJob) {
	idx := d.shardIndex(key)
	select {
	case d.workers[idx] <- job:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.AuditDroppedTotal.Inc()
		d.log.Warn().Int("worker_id", idx).Msg("audit queue full, record dropped")
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32()) % len(d.workers)
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan auditJob) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			d.write(ctx, id, job)
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}

func (d *AuditDispatcher) write(ctx context.Context, id int, job auditJob) {
	var err error
	switch {
	case job.decision != nil:
		err = d.repo.InsertDecision(ctx, *job.decision)
	case job.login != nil:
		err = d.repo.InsertLogin(ctx, *job.login)
	}
	if err != nil {
		metrics.AuditWriteErrorsTotal.Inc()
		d.log.Error().Err(err).Int("worker_id", id).Msg("audit write failed")
	}
}
