// Package worker delivers settlement analytics events in the background.
// Delivery is fire-and-forget: a failed or dropped event never affects a
// completed settlement.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/comanda/backoffice/internal/domain"
	"github.com/comanda/backoffice/internal/service"
	"go.uber.org/zap"
)

const deliveryTimeout = 10 * time.Second

// PoolConfig sizes the dispatcher.
type PoolConfig struct {
	Workers   int
	QueueSize int
}

// Pool is a bounded worker pool draining settlement events to the
// analytics client.
type Pool struct {
	workers int
	queue   chan domain.SettlementEvent
	client  domain.AnalyticsClient
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewPool creates a dispatcher pool.
func NewPool(cfg PoolConfig, client domain.AnalyticsClient, logger *zap.Logger) *Pool {
	return &Pool{
		workers: cfg.Workers,
		queue:   make(chan domain.SettlementEvent, cfg.QueueSize),
		client:  client,
		logger:  logger,
	}
}

// Start launches the workers.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop closes the queue and waits for in-flight deliveries.
func (p *Pool) Stop() {
	close(p.queue)
	p.wg.Wait()
}

// Publish enqueues an event without blocking. Returns false when the
// queue is full and the event was dropped.
func (p *Pool) Publish(ev domain.SettlementEvent) bool {
	select {
	case p.queue <- ev:
		return true
	default:
		return false
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Debug("analytics worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("analytics worker stopping", zap.Int("worker_id", id))
			return
		case ev, ok := <-p.queue:
			if !ok {
				return
			}
			p.deliver(ctx, ev)
		}
	}
}

func (p *Pool) deliver(ctx context.Context, ev domain.SettlementEvent) {
	sendCtx, cancel := context.WithTimeout(ctx, deliveryTimeout)
	defer cancel()

	err := p.client.SendEvent(sendCtx, ev)
	if err == nil {
		p.logger.Debug("settlement event delivered", zap.String("record_id", ev.RecordID))
		return
	}

	var rateLimitErr *service.RateLimitError
	if errors.As(err, &rateLimitErr) {
		// Back off, then retry once; the event is dropped after that.
		p.logger.Warn("analytics rate limit exceeded",
			zap.String("record_id", ev.RecordID),
			zap.Duration("retry_after", rateLimitErr.RetryAfter),
		)
		select {
		case <-ctx.Done():
			return
		case <-time.After(rateLimitErr.RetryAfter):
		}
		retryCtx, retryCancel := context.WithTimeout(ctx, deliveryTimeout)
		defer retryCancel()
		if err := p.client.SendEvent(retryCtx, ev); err == nil {
			return
		}
	}

	p.logger.Error("failed to deliver settlement event",
		zap.String("record_id", ev.RecordID),
		zap.Error(err),
	)
}
