package monitor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeSessions struct {
	size int
	err  error
}

func (f fakeSessions) Size() (int, error) { return f.size, f.err }

type fakeLive int

func (f fakeLive) Len() int { return int(f) }

func TestRefreshWithEmbeddedSessions(t *testing.T) {
	m := New(nil, nil, fakeSessions{size: 3}, fakeLive(2), 0, nil)
	m.refresh()

	status := m.GetStatus()
	assert.False(t, status.PostgreSQL)
	assert.False(t, status.RedisEnabled)
	assert.True(t, status.Sessions)
	assert.Equal(t, 3, status.StoredSessions)
	assert.Equal(t, 2, status.Subscribers)
	assert.False(t, status.LastCheck.IsZero())
	assert.False(t, m.IsOnline())
}

func TestRefreshSessionProbeFailure(t *testing.T) {
	m := New(nil, nil, fakeSessions{err: errors.New("closed")}, nil, 0, nil)
	m.refresh()
	assert.False(t, m.GetStatus().Sessions)
}

func TestSessionsFollowRedisWithoutProbe(t *testing.T) {
	m := New(nil, nil, nil, nil, 0, nil)
	m.refresh()
	assert.False(t, m.GetStatus().Sessions)
}

func TestHealthy(t *testing.T) {
	assert.True(t, Status{PostgreSQL: true, Sessions: true}.Healthy())
	assert.False(t, Status{PostgreSQL: true}.Healthy())
}

func TestStopIsIdempotent(t *testing.T) {
	m := New(nil, nil, nil, nil, 0, nil)
	m.Start()
	m.Stop()
	m.Stop()
}
