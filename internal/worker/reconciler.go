package worker

import (
	"context"
	"sync"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/dto/response"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

type stalePaymentFinder interface {
	FindStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]*entity.Payment, error)
}

type paymentVerifier interface {
	Verify(ctx context.Context, transactionID string) (*response.VerifyPaymentResponse, error)
}

// Reconciler re-verifies payments left pending, e.g. when the guest never came
// back from checkout and no webhook arrived. Status changes go through the
// payment service like any other verification.
type Reconciler struct {
	payments stalePaymentFinder
	verifier paymentVerifier

	interval   time.Duration
	staleAfter time.Duration
	batchSize  int
	workers    int

	log *zap.Logger
}

func NewReconciler(payments stalePaymentFinder, verifier paymentVerifier, config utils.ReconcileConfig, log *zap.Logger) *Reconciler {
	r := &Reconciler{
		payments:   payments,
		verifier:   verifier,
		interval:   config.Interval,
		staleAfter: config.StaleAfter,
		batchSize:  config.BatchSize,
		workers:    config.Workers,
		log:        log.With(zap.String("worker", "reconciler")),
	}
	if r.batchSize <= 0 {
		r.batchSize = 50
	}
	if r.workers <= 0 {
		r.workers = 5
	}
	return r
}

// Start blocks until ctx is cancelled. A zero interval disables the loop.
func (r *Reconciler) Start(ctx context.Context) {
	if r.interval <= 0 {
		r.log.Info("Reconciler disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("Reconciler started",
		zap.Duration("interval", r.interval),
		zap.Duration("stale_after", r.staleAfter),
	)

	for {
		select {
		case <-ctx.Done():
			r.log.Info("Reconciler stopped")
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

// RunOnce verifies one batch of stale pending payments and returns how many
// were processed.
func (r *Reconciler) RunOnce(ctx context.Context) int {
	payments, err := r.payments.FindStalePending(ctx, r.staleAfter, r.batchSize)
	if err != nil {
		r.log.Error("Failed to load stale payments", zap.Error(err))
		return 0
	}
	if len(payments) == 0 {
		r.log.Debug("No stale payments")
		return 0
	}

	r.log.Info("Reconciling stale payments", zap.Int("count", len(payments)))

	jobs := make(chan *entity.Payment, len(payments))
	for _, p := range payments {
		jobs <- p
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < min(r.workers, len(payments)); w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for p := range jobs {
				if ctx.Err() != nil {
					return
				}
				r.reconcile(ctx, id, p)
			}
		}(w)
	}
	wg.Wait()

	return len(payments)
}

func (r *Reconciler) reconcile(ctx context.Context, worker int, p *entity.Payment) {
	ref := p.Reference()
	if ref == "" {
		return
	}

	res, err := r.verifier.Verify(ctx, ref)
	if err != nil {
		r.log.Warn("Reconcile verify failed",
			zap.Error(err),
			zap.Int("worker", worker),
			zap.String("transaction_id", ref),
		)
		return
	}

	r.log.Info("Payment reconciled",
		zap.Int("worker", worker),
		zap.String("transaction_id", ref),
		zap.String("status", string(res.Status)),
	)
}
