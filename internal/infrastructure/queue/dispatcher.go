package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/famlink/family-api/internal/api/metrics"
	"github.com/famlink/family-api/internal/core/domain"
	"github.com/famlink/family-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes auth audit events to a fixed set of workers using
// consistent hashing on the family id, so one family's events are persisted
// in order. It implements ports.ActivitySink.
type Dispatcher struct {
	workers []chan domain.AuthActivity
	service ports.ActivityService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.ActivityService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.AuthActivity, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuthActivity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an event to the worker responsible for its family. When the
// worker's buffer is full the event is dropped: audit recording must never
// block an auth flow.
func (d *Dispatcher) Enqueue(activity domain.AuthActivity) {
	idx := d.shardIndex(activity.FamilyID)
	select {
	case d.workers[idx] <- activity:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		d.log.Warn().
			Str("kind", activity.Kind).
			Int("worker_id", idx).
			Msg("activity queue full, dropping audit event")
	}
}

// shardIndex maps a family id deterministically to a worker index.
func (d *Dispatcher) shardIndex(familyID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(familyID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuthActivity) {
	for {
		select {
		case <-ctx.Done():
			return
		case activity, ok := <-ch:
			if !ok {
				return
			}
			metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if err := d.service.Record(ctx, activity); err != nil {
				d.log.Error().Err(err).
					Str("kind", activity.Kind).
					Str("family_id", activity.FamilyID).
					Int("worker_id", id).
					Msg("auth activity recording failed")
			}
		}
	}
}
