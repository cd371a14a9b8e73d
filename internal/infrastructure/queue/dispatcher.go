package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/standmarket/marketplace/internal/core/domain"
	"github.com/standmarket/marketplace/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Observer receives dispatcher outcomes, typically to feed metrics.
type Observer interface {
	Delivered(kind domain.NotificationKind, err error)
	Dropped(kind domain.NotificationKind)
}

// Dispatcher routes notifications to a fixed set of workers using consistent
// hashing on the recipient, so mail to one address is delivered in order.
type Dispatcher struct {
	workers  []chan domain.Notification
	notifier ports.Notifier
	observer Observer
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers, each
// buffering up to bufferSize notifications. Non-positive values use the
// defaults. observer may be nil.
func NewDispatcher(numWorkers, bufferSize int, notifier ports.Notifier, observer Observer, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if bufferSize <= 0 {
		bufferSize = channelBuffer
	}
	d := &Dispatcher{
		workers:  make([]chan domain.Notification, numWorkers),
		notifier: notifier,
		observer: observer,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, bufferSize)
	}
	return d
}

// Start launches all worker goroutines. Workers stop once their queue is
// drained after Close, or when ctx is cancelled, abandoning queued work.
// ctx must outlive request handling for Close to drain anything.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands n to the worker responsible for its recipient. It never
// blocks the caller: a full queue drops the notification.
func (d *Dispatcher) Enqueue(n domain.Notification) {
	select {
	case d.workers[d.shardIndex(n.Recipient)] <- n:
	default:
		d.log.Error().Str("kind", string(n.Kind)).Str("recipient", n.Recipient).Msg("notification queue full, dropping")
		if d.observer != nil {
			d.observer.Dropped(n.Kind)
		}
	}
}

// Pending returns the number of queued notifications.
func (d *Dispatcher) Pending() int {
	total := 0
	for _, ch := range d.workers {
		total += len(ch)
	}
	return total
}

// Close stops accepting work and waits for the workers to drain. Enqueue
// must not be called after Close.
func (d *Dispatcher) Close() {
	for _, ch := range d.workers {
		close(ch)
	}
	d.wg.Wait()
}

// Shutdown is Close bounded by ctx. It returns ctx.Err() if the queues are
// not drained in time; the workers then keep running until the context
// given to Start is cancelled.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.Close()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			err := d.notifier.Deliver(ctx, n)
			if err != nil {
				d.log.Error().Err(err).
					Str("kind", string(n.Kind)).
					Int("worker_id", id).
					Msg("notification delivery failed")
			}
			if d.observer != nil {
				d.observer.Delivered(n.Kind, err)
			}
		}
	}
}

var _ ports.NotificationQueue = (*Dispatcher)(nil)
