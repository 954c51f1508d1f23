package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// WorkerPool delivers tasks in process on a fixed number of goroutines fed by
// a bounded queue.
type WorkerPool struct {
	mailer      Mailer
	queue       chan Task
	workers     int
	sendTimeout time.Duration
	log         *zap.Logger

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

func NewWorkerPool(mailer Mailer, workers, queueSize int, sendTimeout time.Duration, log *zap.Logger) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	if sendTimeout <= 0 {
		sendTimeout = 30 * time.Second
	}

	return &WorkerPool{
		mailer:      mailer,
		queue:       make(chan Task, queueSize),
		workers:     workers,
		sendTimeout: sendTimeout,
		log:         log.With(zap.String("dispatcher", "worker_pool")),
	}
}

// Start launches the workers. Calling it more than once has no effect.
func (p *WorkerPool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
	p.log.Info("Notification workers started", zap.Int("workers", p.workers))
}

func (p *WorkerPool) Enqueue(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.queue <- task:
		return nil
	default:
		p.log.Warn("Notification queue full, dropping task",
			zap.String("booking_id", task.BookingID.String()))
		return ErrQueueFull
	}
}

// Shutdown stops accepting tasks and waits for queued ones to be delivered or
// for ctx to expire.
func (p *WorkerPool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.log.Info("Notification workers stopped")
		return nil
	case <-ctx.Done():
		p.log.Warn("Notification workers did not drain in time", zap.Int("pending", len(p.queue)))
		return ctx.Err()
	}
}

func (p *WorkerPool) run(id int) {
	defer p.wg.Done()

	for task := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.sendTimeout)
		if err := deliver(ctx, p.mailer, task); err != nil {
			p.log.Error("Failed to deliver confirmation",
				zap.Error(err),
				zap.Int("worker", id),
				zap.String("booking_id", task.BookingID.String()),
			)
		}
		cancel()
	}
}
