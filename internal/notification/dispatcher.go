package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ErrQueueFull is returned by Dispatch when every slot is taken.
	ErrQueueFull = errors.New("mail queue full")
	// ErrDispatcherClosed is returned by Dispatch after Close.
	ErrDispatcherClosed = errors.New("mail dispatcher closed")
)

var mailTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mail_messages_total",
	Help: "Mail messages by delivery result (sent, failed, dropped).",
}, []string{"sender", "result"})

type job struct {
	ctx context.Context
	msg Message
}

// Dispatcher delivers mail on a fixed pool of workers fed by a bounded
// queue. Queued deliveries never report back to the caller.
type Dispatcher struct {
	sender  Sender
	workers int
	logger  *slog.Logger

	mu     sync.RWMutex
	queue  chan job
	closed bool
	once   sync.Once
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Call Start before Dispatch.
func NewDispatcher(sender Sender, workers, queueSize int, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		sender:  sender,
		workers: workers,
		logger:  logger,
		queue:   make(chan job, queueSize),
	}
}

// Start launches the workers. They exit once Close has drained the queue.
func (d *Dispatcher) Start(ctx context.Context) {
	d.once.Do(func() {
		for i := 0; i < d.workers; i++ {
			d.wg.Add(1)
			go d.work(ctx, i)
		}
		d.logger.InfoContext(ctx, "mail dispatcher started",
			slog.String("sender", d.sender.Name()),
			slog.Int("workers", d.workers),
			slog.Int("queue_size", cap(d.queue)),
		)
	})
}

func (d *Dispatcher) work(ctx context.Context, id int) {
	defer d.wg.Done()
	for j := range d.queue {
		if err := d.deliver(j.ctx, j.msg); err != nil {
			d.logger.WarnContext(ctx, "queued mail delivery failed",
				slog.Int("worker", id),
				slog.String("to", j.msg.To),
				slog.String("subject", j.msg.Subject),
				slog.String("error", err.Error()),
			)
		}
	}
}

// Dispatch queues msg without blocking. The message context is detached
// from ctx cancellation so a finished request does not cancel delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return d.drop(msg, ErrDispatcherClosed)
	}
	select {
	case d.queue <- job{ctx: context.WithoutCancel(ctx), msg: msg}:
		return nil
	default:
		return d.drop(msg, ErrQueueFull)
	}
}

// Send delivers msg synchronously.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	return d.deliver(ctx, msg)
}

func (d *Dispatcher) deliver(ctx context.Context, msg Message) error {
	if err := d.sender.Send(ctx, msg); err != nil {
		mailTotal.WithLabelValues(d.sender.Name(), "failed").Inc()
		var delivery *DeliveryError
		if errors.As(err, &delivery) {
			return err
		}
		return &DeliveryError{Sender: d.sender.Name(), To: msg.To, Err: err}
	}
	mailTotal.WithLabelValues(d.sender.Name(), "sent").Inc()
	return nil
}

func (d *Dispatcher) drop(msg Message, reason error) error {
	mailTotal.WithLabelValues(d.sender.Name(), "dropped").Inc()
	return &DeliveryError{Sender: d.sender.Name(), To: msg.To, Err: reason}
}

// Close stops accepting messages and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
}
