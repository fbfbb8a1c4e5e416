// Package service implements the business logic of the directory engine.
package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"dirgate/internal/domain"
	"dirgate/internal/metrics"
)

// Recorder persists audit records. A failed write never fails the operation
// that produced it: the record is logged, the failure counter increments, and
// the recorder reports itself degraded.
type Recorder struct {
	repo domain.AuditRepository
	log  *slog.Logger

	degraded atomic.Bool

	// async mode
	ch chan *domain.AuditRecord
	wg sync.WaitGroup
}

// NewRecorder creates a synchronous recorder: Record persists before returning.
func NewRecorder(repo domain.AuditRepository, log *slog.Logger) *Recorder {
	return &Recorder{repo: repo, log: log}
}

// NewAsyncRecorder creates a recorder that buffers writes through a background
// worker. A full buffer drops the record and degrades the recorder rather
// than blocking the caller.
func NewAsyncRecorder(repo domain.AuditRepository, log *slog.Logger, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	r := &Recorder{repo: repo, log: log, ch: make(chan *domain.AuditRecord, bufferSize)}
	r.wg.Add(1)
	go r.worker()
	return r
}

func (r *Recorder) worker() {
	defer r.wg.Done()
	for rec := range r.ch {
		r.persist(context.Background(), rec)
	}
}

// Record writes one audit record. It never returns an error.
func (r *Recorder) Record(ctx context.Context, rec *domain.AuditRecord) {
	if r.ch != nil {
		select {
		case r.ch <- rec:
		default:
			r.markDegraded(rec, nil)
		}
		return
	}
	r.persist(ctx, rec)
}

func (r *Recorder) persist(ctx context.Context, rec *domain.AuditRecord) {
	if err := r.repo.Insert(ctx, rec); err != nil {
		r.markDegraded(rec, err)
	}
}

func (r *Recorder) markDegraded(rec *domain.AuditRecord, err error) {
	r.degraded.Store(true)
	metrics.AuditWriteFailures.Inc()
	metrics.AuditDegraded.Set(1)
	r.log.Error("audit record lost",
		"action", rec.Action, "target", rec.Target, "actor", rec.ActorName, "error", err)
}

// Degraded reports whether at least one record has been lost since startup.
func (r *Recorder) Degraded() bool {
	return r.degraded.Load()
}

// Close drains the async buffer. It is a no-op for synchronous recorders.
func (r *Recorder) Close() {
	if r.ch != nil {
		close(r.ch)
		r.wg.Wait()
	}
}

// List returns audit records matching the filter, oldest first.
func (r *Recorder) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditRecord, int64, error) {
	return r.repo.List(ctx, filter)
}

// auditFromContext builds a record attributed to the context principal, or to
// "system" when no principal is present (CLI, janitor).
func auditFromContext(ctx context.Context, action, target, details string) *domain.AuditRecord {
	rec := &domain.AuditRecord{Action: action, Target: target, Details: details}
	if p, ok := domain.PrincipalFromContext(ctx); ok {
		id := p.ID
		rec.ActorID = &id
		rec.ActorName = p.Username
		rec.IPAddress = p.IP
	} else {
		rec.ActorName = "system"
	}
	return rec
}
