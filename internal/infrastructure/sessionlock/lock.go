package sessionlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"travelbro-server/internal/domain/chat"
)

// Locker serializes turns per (session, trip) with a Redis-backed lease.
// The lease TTL bounds how long a crashed turn can block its session.
type Locker struct {
	rs  *redsync.Redsync
	ttl time.Duration
	log zerolog.Logger
}

// NewLocker builds the locker on an existing Redis client.
func NewLocker(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Locker{
		rs:  redsync.New(goredis.NewPool(client)),
		ttl: ttl,
		log: log.With().Str("component", "session-lock").Logger(),
	}
}

// Acquire takes the per-(session, trip) lease without waiting. A held lease
// maps to chat.ErrSessionBusy so the caller can surface a retry hint.
func (l *Locker) Acquire(ctx context.Context, sessionToken, tripID string) (func(), error) {
	mutex := l.rs.NewMutex(
		fmt.Sprintf("travelbro:turn-lease:%s:%s", sessionToken, tripID),
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(1),
	)
	if err := mutex.TryLockContext(ctx); err != nil {
		if errors.Is(err, redsync.ErrFailed) {
			return nil, chat.ErrSessionBusy
		}
		var taken *redsync.ErrTaken
		if errors.As(err, &taken) {
			return nil, chat.ErrSessionBusy
		}
		return nil, err
	}

	release := func() {
		if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			l.log.Warn().Err(err).Str("trip_id", tripID).Msg("release turn lease")
		}
	}
	return release, nil
}

// Ensure interface compliance.
var _ chat.SessionLocker = (*Locker)(nil)
