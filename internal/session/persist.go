package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/wardrobe-stylist/internal/domain"
)

// persistOp is one durable write. A clear deletes both keys; otherwise the
// inventory and location are saved.
type persistOp struct {
	ctx       context.Context
	clear     bool
	inventory []domain.ClothingItem
	location  *domain.Location
}

// persister applies durable writes on a single goroutine so the manager never
// waits on the store while holding its lock. Every write replaces the whole
// persisted state, so only the newest pending op needs to run.
type persister struct {
	store   Persister
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	pending *persistOp
	busy    bool
	closed  bool
	done    chan struct{}
}

func newPersister(store Persister, timeout time.Duration, logger *slog.Logger) *persister {
	p := &persister{
		store:   store,
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	go p.run()
	return p
}

// enqueue schedules op, superseding any write that has not started yet.
func (p *persister) enqueue(op persistOp) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.logger.Warn("Dropping session write after close", "clear", op.clear)
		return
	}
	p.pending = &op
	p.cond.Broadcast()
}

// flush blocks until every enqueued write has been applied.
func (p *persister) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for p.pending != nil || p.busy {
		p.cond.Wait()
	}
}

// close applies the pending write, if any, and stops the writer.
func (p *persister) close() {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()
	<-p.done
}

func (p *persister) run() {
	defer close(p.done)
	for {
		p.mu.Lock()
		for p.pending == nil && !p.closed {
			p.cond.Wait()
		}
		op := p.pending
		if op == nil {
			p.mu.Unlock()
			return
		}
		p.pending = nil
		p.busy = true
		p.mu.Unlock()

		p.apply(*op)

		p.mu.Lock()
		p.busy = false
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}

func (p *persister) apply(op persistOp) {
	ctx, cancel := context.WithTimeout(op.ctx, p.timeout)
	defer cancel()

	if op.clear {
		if err := p.store.Clear(ctx); err != nil {
			p.logger.Warn("Failed to clear persisted session", "error", err)
		}
		return
	}
	if err := p.store.Save(ctx, op.inventory, op.location); err != nil {
		p.logger.Warn("Failed to persist session", "error", err)
	}
}
