package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/messagely/messagely-api/internal/api/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// LoginStamper persists a last-login time for a user.
type LoginStamper interface {
	RecordLogin(ctx context.Context, username string) error
}

// Dispatcher records last-login stamps off the request path. Usernames are
// routed to a fixed set of workers by consistent hashing, so stamps for one
// user are applied in order.
type Dispatcher struct {
	workers []chan string
	stamper LoginStamper
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, stamper LoginStamper, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan string, numWorkers),
		stamper: stamper,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan string, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record queues a last-login stamp for username. It never blocks: when the
// worker's buffer is full the stamp is dropped and logged.
func (d *Dispatcher) Record(username string) {
	idx := d.shardIndex(username)
	select {
	case d.workers[idx] <- username:
		metrics.LoginQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		metrics.LoginStampErrorsTotal.Inc()
		d.log.Warn().Str("username", username).Int("worker_id", idx).Msg("login stamp queue full, dropping")
	}
}

// shardIndex maps a username deterministically to a worker index.
func (d *Dispatcher) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan string) {
	defer d.wg.Done()
	depth := metrics.LoginQueueDepth.WithLabelValues(strconv.Itoa(id))

	for {
		select {
		case <-ctx.Done():
			return
		case username, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			if err := d.stamper.RecordLogin(ctx, username); err != nil {
				metrics.LoginStampErrorsTotal.Inc()
				d.log.Error().Err(err).
					Str("username", username).
					Int("worker_id", id).
					Msg("login stamp failed")
			}
		}
	}
}
