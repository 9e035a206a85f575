package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"marmitaria/internal/catalog"
	"marmitaria/internal/models"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

var (
	ErrQueueFull    = errors.New("notification queue is full")
	ErrQueueClosed  = errors.New("notification queue is closed")
	ErrUnknownOrder = errors.New("no notification for order")
)

type QueueConfig struct {
	Buffer      int
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
}

func (c QueueConfig) withDefaults() QueueConfig {
	if c.Buffer <= 0 {
		c.Buffer = 64
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.BaseBackoff <= 0 {
		c.BaseBackoff = time.Second
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30 * time.Second
	}
	return c
}

// Queue is the in-process dispatcher. Orders are rendered at dispatch time
// and handled by one background worker that retries the send and then
// prints whatever the send outcome was. An order id is accepted once.
type Queue struct {
	sender  Sender
	printer Printer
	live    *catalog.Live
	log     *zap.Logger
	cfg     QueueConfig

	jobs chan Receipt
	wg   sync.WaitGroup

	mu     sync.Mutex
	closed bool
	status map[string]entry
	now    func() time.Time
}

type entry struct {
	status  Status
	settled time.Time
}

func NewQueue(sender Sender, printer Printer, live *catalog.Live, log *zap.Logger, cfg QueueConfig) *Queue {
	if log == nil {
		log = zap.NewNop()
	}
	cfg = cfg.withDefaults()
	return &Queue{
		sender:  sender,
		printer: printer,
		live:    live,
		log:     log,
		cfg:     cfg,
		jobs:    make(chan Receipt, cfg.Buffer),
		status:  make(map[string]entry),
		now:     time.Now,
	}
}

// Start runs the worker until Close is called. ctx cancels pending backoff
// waits and in-flight sends.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for r := range q.jobs {
			q.handle(ctx, r)
		}
	}()
}

// Close stops accepting orders and waits for the queued ones to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) Dispatch(_ context.Context, order models.OrderDetails) error {
	r := NewReceipt(order, q.live.Snapshot())

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}
	if _, seen := q.status[r.OrderID]; seen {
		q.log.Debug("duplicate dispatch ignored", zap.String("order", r.OrderID))
		return nil
	}
	select {
	case q.jobs <- r:
		q.status[r.OrderID] = entry{status: StatusPending}
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) Status(_ context.Context, orderID string) (Status, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.status[orderID]
	if !ok {
		return "", ErrUnknownOrder
	}
	return e.status, nil
}

func (q *Queue) setStatus(orderID string, s Status) {
	q.mu.Lock()
	q.status[orderID] = entry{status: s, settled: q.now()}
	q.mu.Unlock()
}

// Prune forgets orders that finished more than ttl ago. Pending orders are
// kept. It returns how many entries were removed.
func (q *Queue) Prune(ttl time.Duration) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	cutoff := q.now().Add(-ttl)
	removed := 0
	for id, e := range q.status {
		if e.status != StatusPending && e.settled.Before(cutoff) {
			delete(q.status, id)
			removed++
		}
	}
	return removed
}

// Run prunes finished orders every interval until ctx is done.
func (q *Queue) Run(ctx context.Context, every, ttl time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := q.Prune(ttl); n > 0 {
				q.log.Debug("pruned notification status", zap.Int("removed", n))
			}
		}
	}
}

func (q *Queue) handle(ctx context.Context, r Receipt) {
	log := q.log.With(zap.String("order", r.OrderID))

	if err := q.send(ctx, r); err != nil {
		log.Error("order message failed", zap.Error(err))
		q.setStatus(r.OrderID, StatusFailed)
	} else {
		log.Info("order message sent")
		q.setStatus(r.OrderID, StatusSent)
	}

	if q.printer == nil {
		return
	}
	if err := q.printer.Print(ctx, r); err != nil {
		log.Error("print receipt failed", zap.Error(err))
	}
}

func (q *Queue) send(ctx context.Context, r Receipt) error {
	var err error
	for attempt := 1; attempt <= q.cfg.MaxAttempts; attempt++ {
		if err = q.sender.Send(ctx, r.Phone, r.Text); err == nil {
			return nil
		}
		var sendErr *SendError
		if errors.As(err, &sendErr) && sendErr.Permanent() {
			return err
		}
		if attempt == q.cfg.MaxAttempts {
			break
		}
		wait := q.backoff(attempt)
		q.log.Warn("order message attempt failed",
			zap.String("order", r.OrderID),
			zap.Int("attempt", attempt),
			zap.Duration("retryIn", wait),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return err
}

func (q *Queue) backoff(attempt int) time.Duration {
	d := q.cfg.BaseBackoff << (attempt - 1)
	if d <= 0 || d > q.cfg.MaxBackoff {
		return q.cfg.MaxBackoff
	}
	return d
}
