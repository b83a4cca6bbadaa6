package broker

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/chatwire/chat-system/internal/api/metrics"
	"github.com/chatwire/chat-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Deliverer consumes events on the worker side of the dispatcher.
type Deliverer interface {
	Deliver(event ports.Event) int
}

// Dispatcher routes events to a fixed set of workers using consistent hashing
// on the room id, so events for one room are always delivered in the order
// they were published while publishes for distinct rooms run in parallel.
// Publish never blocks: when a worker's buffer is full the event is dropped,
// which is acceptable because the durable write has already succeeded and
// clients recover via retrieval.
type Dispatcher struct {
	workers []chan ports.Event
	sink    Deliverer
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink Deliverer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Event, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Event, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Publish implements ports.EventPublisher.
func (d *Dispatcher) Publish(room string, event ports.Event) {
	if room == "" {
		return
	}
	select {
	case d.workers[d.shardIndex(room)] <- event:
		metrics.BrokerEventsPublished.WithLabelValues(event.Type).Inc()
	default:
		metrics.BrokerEventsDropped.Inc()
		d.log.Warn().Str("room", room).Str("event", event.Type).Msg("fan-out buffer full, event dropped")
	}
}

// shardIndex maps a room id deterministically to a worker index.
func (d *Dispatcher) shardIndex(room string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(room))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			delivered := d.sink.Deliver(event)
			d.log.Debug().
				Str("room", event.Room).
				Str("event", event.Type).
				Int("delivered", delivered).
				Int("worker_id", id).
				Msg("event fanned out")
		}
	}
}
