package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Listener holds one pooled connection in LISTEN mode and forwards every
// notification payload (the affected owner email) to a callback.
type Listener struct {
	pool    *pgxpool.Pool
	channel string
	retry   time.Duration
	logger  *zap.Logger
}

func NewListener(pool *pgxpool.Pool, channel string, retry time.Duration, logger *zap.Logger) *Listener {
	if channel == "" {
		channel = "task_changes"
	}
	if retry <= 0 {
		retry = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Listener{pool: pool, channel: channel, retry: retry, logger: logger}
}

// Run blocks until ctx is done, reconnecting after connection failures.
// resync, when set, runs every time LISTEN is (re)established, since
// notifications sent while disconnected are lost.
func (l *Listener) Run(ctx context.Context, notify func(payload string), resync func()) error {
	for {
		err := l.listen(ctx, notify, resync)
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Warn("task change listener interrupted", zap.String("channel", l.channel), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.retry):
		}
	}
}

func (l *Listener) listen(ctx context.Context, notify func(payload string), resync func()) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return err
	}
	l.logger.Info("listening for task changes", zap.String("channel", l.channel))
	if resync != nil {
		resync()
	}

	for {
		n, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				// The connection is mid-wait; close it rather than return it to the pool.
				_ = conn.Conn().Close(context.Background())
			}
			return err
		}
		if n.Payload == "" {
			continue
		}
		notify(n.Payload)
	}
}
