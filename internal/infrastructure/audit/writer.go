// Package audit persists Securia audit records asynchronously so request
// handlers never block on the audit collection.
package audit

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/fieldstone/crm-system/internal/api/metrics"
	"github.com/fieldstone/crm-system/internal/core/domain"
	"github.com/fieldstone/crm-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Writer routes audit records to a fixed set of workers using consistent
// hashing on the actor, keeping per-actor insertion order.
type Writer struct {
	workers []chan domain.AuditRecord
	repo    ports.AuditRepository
	log     zerolog.Logger
}

// NewWriter creates a Writer with numWorkers sharded workers. If
// numWorkers <= 0, defaultWorkers is used.
func NewWriter(numWorkers int, repo ports.AuditRepository, log zerolog.Logger) *Writer {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	w := &Writer{
		workers: make([]chan domain.AuditRecord, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range w.workers {
		w.workers[i] = make(chan domain.AuditRecord, channelBuffer)
	}
	return w
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (w *Writer) Start(ctx context.Context) {
	for i, ch := range w.workers {
		go w.runWorker(ctx, i, ch)
	}
}

// Record hands a record to the worker responsible for its actor. The call
// is non-blocking up to channelBuffer capacity.
func (w *Writer) Record(rec domain.AuditRecord) {
	i := w.shardIndex(rec.Actor)
	w.workers[i] <- rec
	metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(w.workers[i])))
}

// shardIndex maps an actor deterministically to a worker index.
func (w *Writer) shardIndex(actor string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(actor))
	return int(h.Sum32()) % len(w.workers)
}

func (w *Writer) runWorker(ctx context.Context, id int, ch <-chan domain.AuditRecord) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case rec, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			if err := w.repo.Insert(ctx, &rec); err != nil {
				metrics.AuditEventsWrittenTotal.WithLabelValues("error").Inc()
				w.log.Error().Err(err).
					Str("actor", rec.Actor).
					Str("action", rec.Action).
					Int("worker_id", id).
					Msg("audit record insert failed")
				continue
			}
			metrics.AuditEventsWrittenTotal.WithLabelValues("ok").Inc()
		}
	}
}

var _ ports.AuditSink = (*Writer)(nil)
