// Package realtime fans task change notifications out to live subscriptions.
// Every emission is a full snapshot of the subscription's filtered result set.
package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskflow/domain"
	"github.com/fastygo/taskflow/usecase"
)

// Loader reads the current result set for a filter.
type Loader func(ctx context.Context, filter domain.Filter) ([]domain.Task, error)

// Config tunes per-subscription buffering and snapshot loads.
type Config struct {
	Buffer      int
	LoadTimeout time.Duration
}

// Hub tracks live subscriptions and reloads their snapshots on change.
type Hub struct {
	load   Loader
	cfg    Config
	logger *zap.Logger

	mu     sync.RWMutex
	subs   map[string]*Subscription
	closed bool
}

func NewHub(load Loader, cfg Config, logger *zap.Logger) *Hub {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 16
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		load:   load,
		cfg:    cfg,
		logger: logger,
		subs:   make(map[string]*Subscription),
	}
}

// Subscription is one live query. Its callback runs on a dedicated goroutine,
// one snapshot at a time, in signal order.
type Subscription struct {
	id      string
	filter  domain.Filter
	hub     *Hub
	fn      usecase.SnapshotFunc
	signals chan struct{}
	done    chan struct{}
	once    sync.Once
}

var _ usecase.Subscription = (*Subscription)(nil)

// Subscribe registers fn for filter and schedules the initial snapshot. The
// subscription ends on Cancel or when ctx is done, whichever comes first.
func (h *Hub) Subscribe(ctx context.Context, filter domain.Filter, fn usecase.SnapshotFunc) (*Subscription, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, domain.ErrInvalidPayload
	}

	sub := &Subscription{
		id:      uuid.NewString(),
		filter:  filter,
		hub:     h,
		fn:      fn,
		signals: make(chan struct{}, h.cfg.Buffer),
		done:    make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, domain.NewError(domain.ErrCodeInternal, "realtime hub is closed")
	}
	h.subs[sub.id] = sub
	h.mu.Unlock()

	sub.signals <- struct{}{}
	go sub.run()
	go func() {
		select {
		case <-ctx.Done():
			sub.Cancel()
		case <-sub.done:
		}
	}()

	h.logger.Debug("subscription opened",
		zap.String("subscription_id", sub.id),
		zap.String("owner", filter.Value))
	return sub, nil
}

// Notify signals every subscription whose filter covers owner. A signal is
// dropped when the subscriber already has a full buffer of pending reloads,
// since each of those reloads reads the latest state anyway.
func (h *Hub) Notify(owner string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.filter.Matches(owner) {
			h.signal(sub)
		}
	}
}

// NotifyAll makes every live subscription reload. Used after the change feed
// reconnects, when notifications may have been missed.
func (h *Hub) NotifyAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		h.signal(sub)
	}
	h.logger.Debug("resync requested", zap.Int("subscriptions", len(h.subs)))
}

func (h *Hub) signal(sub *Subscription) {
	select {
	case sub.signals <- struct{}{}:
	default:
		h.logger.Debug("subscription signal dropped", zap.String("subscription_id", sub.id))
	}
}

// Len reports the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close cancels every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*Subscription, 0, len(h.subs))
	for _, sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

// ID returns the subscription identifier.
func (s *Subscription) ID() string {
	return s.id
}

// Done is closed once the subscription is cancelled.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Cancel unregisters the subscription. A snapshot already being delivered may
// still complete; the owner of the callback must tolerate that.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		s.hub.remove(s.id)
		s.hub.logger.Debug("subscription closed", zap.String("subscription_id", s.id))
	})
}

func (s *Subscription) run() {
	for {
		select {
		case <-s.done:
			return
		case <-s.signals:
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.hub.cfg.LoadTimeout)
		tasks, err := s.hub.load(ctx, s.filter)
		cancel()
		if err != nil {
			s.hub.logger.Warn("snapshot load failed",
				zap.String("subscription_id", s.id),
				zap.Error(err))
			continue
		}

		select {
		case <-s.done:
			return
		default:
		}
		s.fn(tasks)
	}
}
