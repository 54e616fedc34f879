package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// SessionProbe reports how many sessions the embedded store holds.
type SessionProbe interface {
	Size() (int, error)
}

// LiveCounter reports the number of open task subscriptions.
type LiveCounter interface {
	Len() int
}

type Monitor struct {
	pg       *pgxpool.Pool
	redis    *redislib.Client
	sessions SessionProbe
	live     LiveCounter

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// New builds a monitor. redis and sessions may be nil depending on the
// configured session driver; with sessions nil the session store is Redis.
func New(pg *pgxpool.Pool, redis *redislib.Client, sessions SessionProbe, live LiveCounter, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pg:       pg,
		redis:    redis,
		sessions: sessions,
		live:     live,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether tasks and sessions are both reachable.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Healthy()
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.refresh()
	for {
		select {
		case <-ticker.C:
			m.refresh()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Monitor) refresh() {
	status := Status{
		PostgreSQL:   m.checkPostgres(),
		RedisEnabled: m.redis != nil,
		Redis:        m.checkRedis(),
		LastCheck:    time.Now(),
	}
	if m.sessions != nil {
		status.Sessions, status.StoredSessions = m.checkSessions()
	} else {
		status.Sessions = status.Redis
	}
	if m.live != nil {
		status.Subscribers = m.live.Len()
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if !prev.LastCheck.IsZero() && prev.Healthy() != status.Healthy() {
		m.logger.Warn("dependency health changed",
			zap.Bool("healthy", status.Healthy()),
			zap.Bool("postgresql", status.PostgreSQL),
			zap.Bool("sessions", status.Sessions))
	}
}

func (m *Monitor) checkPostgres() bool {
	if m.pg == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return m.pg.Ping(ctx) == nil
}

func (m *Monitor) checkRedis() bool {
	if m.redis == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return m.redis.Ping(ctx).Err() == nil
}

func (m *Monitor) checkSessions() (bool, int) {
	size, err := m.sessions.Size()
	if err != nil {
		m.logger.Warn("session store check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
