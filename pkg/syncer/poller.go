// Package syncer keeps panel state fresh: a polling loop re-reads the
// active target on an interval while the panel is visible, and a store
// watcher picks up out-of-band writes to the backing document.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/annolab/margin/logging"
	"github.com/annolab/margin/pkg/receiver"
	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is used when no interval is configured.
const DefaultPollInterval = time.Second

// Poller refreshes the active target's threads on a fixed interval. It runs
// only while the panel is visible: Start on show, Stop on hide. Stop cancels
// the ticker, so a hidden panel holds no repeating timer.
type Poller struct {
	receiver *receiver.Receiver
	interval time.Duration
	logger   *logrus.Entry

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPoller creates a poller over the receiver's refresh primitive.
func NewPoller(r *receiver.Receiver, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		receiver: r,
		interval: interval,
		logger:   logging.NewLogger("poller"),
	}
}

// Start begins polling. Idempotent: starting a running poller is a no-op.
// The first refresh happens immediately so a freshly shown panel is not
// one tick stale.
func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	events := p.receiver.Subscribe()

	p.wg.Add(1)
	go p.loop(ctx, events)

	p.logger.WithField("interval", p.interval).Debug("Poller started")
}

// Stop halts polling and releases the timer. Idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
	p.logger.Debug("Poller stopped")
}

// Running reports whether the poller is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller) loop(ctx context.Context, events chan receiver.Event) {
	defer p.wg.Done()
	defer p.receiver.Unsubscribe(events)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.receiver.RefreshComments()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.receiver.RefreshComments()
		case ev, ok := <-events:
			if !ok {
				return
			}
			// A target switch refreshes out of cycle instead of leaving
			// the panel stale until the next tick. Mutating intents
			// refresh inline in the receiver, so only the target event
			// matters here.
			if ev.Type == receiver.EventTargetSet {
				p.receiver.RefreshComments()
			}
		}
	}
}
