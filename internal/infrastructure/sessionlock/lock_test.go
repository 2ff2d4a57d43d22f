package sessionlock_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelbro-server/internal/domain/chat"
	"travelbro-server/internal/infrastructure/sessionlock"
)

func newTestLocker(t *testing.T) *sessionlock.Locker {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return sessionlock.NewLocker(client, 30*time.Second, zerolog.Nop())
}

func TestAcquireAndRelease(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "sess-1", "trip-1")
	require.NoError(t, err)
	require.NotNil(t, release)

	release()

	// Freed lease can be taken again.
	release, err = locker.Acquire(ctx, "sess-1", "trip-1")
	require.NoError(t, err)
	release()
}

func TestAcquireHeldLeaseIsBusy(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "sess-1", "trip-1")
	require.NoError(t, err)
	defer release()

	_, err = locker.Acquire(ctx, "sess-1", "trip-1")
	assert.ErrorIs(t, err, chat.ErrSessionBusy)
}

func TestAcquireIsScopedPerSessionAndTrip(t *testing.T) {
	locker := newTestLocker(t)
	ctx := context.Background()

	release, err := locker.Acquire(ctx, "sess-1", "trip-1")
	require.NoError(t, err)
	defer release()

	// A different session or trip holds an independent lease.
	otherSession, err := locker.Acquire(ctx, "sess-2", "trip-1")
	require.NoError(t, err)
	defer otherSession()

	otherTrip, err := locker.Acquire(ctx, "sess-1", "trip-2")
	require.NoError(t, err)
	defer otherTrip()
}
