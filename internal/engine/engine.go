// Package engine implements the matching core: the periodic scan loop, the
// per-asset matching decision, the quantity-confirmation and
// best-bid/best-offer negotiation state machines, the atomic trade-commit
// procedure, and the cache/flag coherence that supports them.
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/olyamironova/exchange-engine/internal/domain"
	"github.com/olyamironova/exchange-engine/internal/port"
)

// Config carries the engine's tunable timeouts. Zero values are replaced
// with sensible defaults. HeartbeatTTL and ActiveOrdersFlagTTL are not read
// by the engine: the expiry of the heartbeat and flag keys is fixed by the
// KVStore implementation.
type Config struct {
	TickInterval                time.Duration
	StartupGrace                time.Duration
	NegotiationResponseWindow   time.Duration
	ConfirmationResponseWindow  time.Duration
	HeartbeatTTL                time.Duration
	ActiveOrdersFlagTTL         time.Duration
	AdvisoryMaxSpreadPct        string
}

func (c Config) withDefaults() Config {
	if c.TickInterval == 0 {
		c.TickInterval = 5 * time.Second
	}
	if c.StartupGrace == 0 {
		c.StartupGrace = 10 * time.Second
	}
	if c.NegotiationResponseWindow == 0 {
		c.NegotiationResponseWindow = 30 * time.Second
	}
	if c.ConfirmationResponseWindow == 0 {
		c.ConfirmationResponseWindow = 60 * time.Second
	}
	if c.HeartbeatTTL == 0 {
		c.HeartbeatTTL = 10 * time.Minute
	}
	if c.ActiveOrdersFlagTTL == 0 {
		c.ActiveOrdersFlagTTL = 5 * time.Minute
	}
	if c.AdvisoryMaxSpreadPct == "" {
		c.AdvisoryMaxSpreadPct = "20"
	}
	return c
}

// Engine is the administrative surface of the matching core, and the
// exclusive owner of NegotiationState, PendingConfirmation, DeclinedPairs,
// and the SnapshotCache in memory.
type Engine struct {
	cfg Config
	log *zap.Logger

	repo       port.Repository
	kv         port.KVStore
	realtime   port.Realtime
	secondary  port.Secondary
	projection port.Projection

	cache  *snapshotCache
	timers *timerService

	// cmd is the single-consumer inbox that serializes every mutation to
	// the maps below: the matching loop, response handlers, and timer
	// fires all submit closures here instead of taking a lock directly.
	cmd chan func()

	pending      map[string]*domain.PendingConfirmation
	declined     map[string]struct{}
	negotiations map[string]*domain.NegotiationState
	lastAdvisory map[string]time.Time

	runMu   sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// New wires an Engine against its external collaborators.
func New(cfg Config, repo port.Repository, kv port.KVStore, realtime port.Realtime, secondary port.Secondary, projection port.Projection, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		cfg:          cfg.withDefaults(),
		log:          log,
		repo:         repo,
		kv:           kv,
		realtime:     realtime,
		secondary:    secondary,
		projection:   projection,
		cache:        newSnapshotCache(repo),
		timers:       newTimerService(),
		cmd:          make(chan func()),
		pending:      make(map[string]*domain.PendingConfirmation),
		declined:     make(map[string]struct{}),
		negotiations: make(map[string]*domain.NegotiationState),
		lastAdvisory: make(map[string]time.Time),
	}
}

// Start begins the matching loop after the configured startup grace. It is
// idempotent: calling Start while already running is a no-op.
func (e *Engine) Start(ctx context.Context) {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.running {
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})

	e.wg.Add(1)
	go e.serialize()

	e.wg.Add(1)
	go e.runLoop(ctx)
}

// Stop halts the matching loop. In-flight ticks finish before Stop returns.
func (e *Engine) Stop() {
	e.runMu.Lock()
	if !e.running {
		e.runMu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	e.runMu.Unlock()
	e.wg.Wait()
}

// serialize drains cmd, running every submitted closure to completion before
// the next — this is the engine-wide lock, expressed as a single-consumer
// inbox rather than a mutex.
func (e *Engine) serialize() {
	defer e.wg.Done()
	for {
		select {
		case fn := <-e.cmd:
			fn()
		case <-e.stopCh:
			return
		}
	}
}

// submit runs fn on the serialization goroutine and blocks until it
// completes. Used by response handlers and timer fires so they never run
// concurrently with a tick: no response handler may run while a decision
// for the same asset is in flight.
func (e *Engine) submit(fn func()) {
	done := make(chan struct{})
	wrapped := func() {
		fn()
		close(done)
	}
	select {
	case e.cmd <- wrapped:
		<-done
	case <-e.stopCh:
	}
}

// ProcessAsset forces an immediate matching decision for one asset, then
// invalidates the snapshot.
func (e *Engine) ProcessAsset(ctx context.Context, asset string) {
	e.submit(func() {
		orders, err := e.repo.FindActiveOrdersForAsset(ctx, asset)
		if err != nil {
			e.log.Warn("processAsset: load orders failed", zap.String("asset", asset), zap.Error(err))
			return
		}
		e.decideAsset(ctx, asset, orders)
	})
	e.cache.invalidate()
}

// MarkActiveOrders primes the has-active-orders hint flag. Called by order
// ingestion outside this package.
func (e *Engine) MarkActiveOrders() {
	ctx := context.Background()
	if err := e.kv.SetActiveOrdersFlag(ctx, true); err != nil {
		e.log.Warn("markActiveOrders: flag write failed", zap.Error(err))
	}
}
