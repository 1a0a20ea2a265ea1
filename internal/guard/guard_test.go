package guard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"toubkal-lib/internal/logging"
	"toubkal-lib/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "toubkal@2024"

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newGuard(t *testing.T) (*Guard, *storage.Memory, *fakeClock) {
	t.Helper()
	kv := storage.NewMemory()
	clock := &fakeClock{now: t0}
	return New(kv, secret, WithClock(clock.Now), WithLogger(logging.Discard())), kv, clock
}

func login(g *Guard, pw string) (Status, error) {
	return g.AttemptLogin(context.Background(), []byte(pw))
}

func TestAttemptLogin_LocksExactlyOnFifthFailure(t *testing.T) {
	g, kv, _ := newGuard(t)
	ctx := context.Background()

	for i := 1; i < MaxAttempts; i++ {
		st, err := login(g, "wrong")
		require.ErrorIs(t, err, ErrIncorrectCredential)
		assert.Equal(t, LoggedOut, st.Phase, "attempt %d", i)
		assert.Equal(t, MaxAttempts-i, st.RemainingAttempts)

		var authErr *AuthError
		require.True(t, errors.As(err, &authErr))
		assert.Equal(t, MaxAttempts-i, authErr.Remaining)

		_, found, _ := kv.Get(ctx, KeyBlocked)
		assert.False(t, found, "locked early on attempt %d", i)
	}

	st, err := login(g, "wrong")
	require.ErrorIs(t, err, ErrLockedOut)
	assert.Equal(t, Locked, st.Phase)
	assert.Equal(t, t0.Add(LockoutDuration), st.LockedUntil)

	var lockErr *AuthError
	require.True(t, errors.As(err, &lockErr))
	assert.True(t, lockErr.JustLocked)

	v, found, _ := kv.Get(ctx, KeyBlocked)
	require.True(t, found)
	assert.Equal(t, "1700000000000", v)
}

func TestAttemptLogin_LockedRefusesEvenCorrectPassword(t *testing.T) {
	g, kv, clock := newGuard(t)
	ctx := context.Background()
	for i := 0; i < MaxAttempts; i++ {
		_, _ = login(g, "wrong")
	}

	clock.Advance(time.Minute)
	st, err := login(g, secret)
	require.ErrorIs(t, err, ErrLockedOut)
	assert.Equal(t, Locked, st.Phase)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.False(t, authErr.JustLocked, "refused by an existing lockout")

	attempts, _, _ := kv.Get(ctx, KeyAttempts)
	assert.Equal(t, "5", attempts, "locked attempts must not mutate the counter")
	_, found, _ := kv.Get(ctx, KeyAuth)
	assert.False(t, found)
}

func TestStatus_LockoutExpiry(t *testing.T) {
	g, kv, clock := newGuard(t)
	ctx := context.Background()
	for i := 0; i < MaxAttempts; i++ {
		_, _ = login(g, "wrong")
	}

	clock.Advance(LockoutDuration - time.Millisecond)
	st, err := g.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, Locked, st.Phase)

	clock.Advance(2 * time.Millisecond)
	st, err = g.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, LoggedOut, st.Phase)
	assert.Zero(t, st.FailedAttempts)
	assert.Equal(t, MaxAttempts, st.RemainingAttempts)

	_, found, _ := kv.Get(ctx, KeyBlocked)
	assert.False(t, found)
	_, found, _ = kv.Get(ctx, KeyAttempts)
	assert.False(t, found)

	// a fresh failure starts counting again from one
	st, err = login(g, "wrong")
	require.ErrorIs(t, err, ErrIncorrectCredential)
	assert.Equal(t, 1, st.FailedAttempts)
}

func TestStatus_SessionExpiry(t *testing.T) {
	g, kv, clock := newGuard(t)
	ctx := context.Background()

	st, err := login(g, secret)
	require.NoError(t, err)
	assert.Equal(t, LoggedIn, st.Phase)
	assert.Equal(t, t0.Add(SessionTTL), st.SessionExpiresAt)

	clock.Advance(SessionTTL - time.Millisecond)
	st, err = g.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, LoggedIn, st.Phase)

	clock.Advance(2 * time.Millisecond)
	st, err = g.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, LoggedOut, st.Phase)
	assert.Equal(t, NoticeSessionExpired, st.Notice)

	_, found, _ := kv.Get(ctx, KeyAuth)
	assert.False(t, found)
	_, found, _ = kv.Get(ctx, KeyAuthTime)
	assert.False(t, found)

	// the notice is surfaced once; the next load is a plain logged-out state
	st, err = g.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, NoticeNone, st.Notice)
}

func TestAttemptLogin_SuccessResetsCounters(t *testing.T) {
	g, kv, _ := newGuard(t)
	ctx := context.Background()

	for i := 0; i < MaxAttempts-1; i++ {
		_, _ = login(g, "wrong")
	}
	st, err := login(g, secret)
	require.NoError(t, err)
	assert.Equal(t, LoggedIn, st.Phase)
	assert.Zero(t, st.FailedAttempts)

	_, found, _ := kv.Get(ctx, KeyAttempts)
	assert.False(t, found)
	_, found, _ = kv.Get(ctx, KeyBlocked)
	assert.False(t, found)
	v, _, _ := kv.Get(ctx, KeyAuth)
	assert.Equal(t, "true", v)
}

func TestAttemptLogin_ZeroesPassword(t *testing.T) {
	g, _, _ := newGuard(t)

	pw := []byte(secret)
	_, err := g.AttemptLogin(context.Background(), pw)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, len(secret)), pw)

	pw = []byte("nope")
	_, _ = g.AttemptLogin(context.Background(), pw)
	assert.Equal(t, make([]byte, 4), pw)
}

func TestAttemptLogin_WhenLoggedIn(t *testing.T) {
	g, _, _ := newGuard(t)
	_, err := login(g, secret)
	require.NoError(t, err)

	st, err := login(g, "wrong")
	require.ErrorIs(t, err, ErrAlreadyAuthenticated)
	assert.Equal(t, LoggedIn, st.Phase)
	assert.Zero(t, st.FailedAttempts)
}

func TestAttemptLogin_IsByteExact(t *testing.T) {
	g, _, _ := newGuard(t)
	for _, pw := range []string{"", "Toubkal@2024", "toubkal@2024 ", " toubkal@2024"} {
		_, err := login(g, pw)
		assert.ErrorIs(t, err, ErrIncorrectCredential, "password %q", pw)
	}
}

func TestLogout(t *testing.T) {
	g, kv, _ := newGuard(t)
	ctx := context.Background()

	require.NoError(t, g.Logout(ctx), "logout while logged out is a no-op")

	_, err := login(g, secret)
	require.NoError(t, err)
	require.NoError(t, g.Logout(ctx))

	st, err := g.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, LoggedOut, st.Phase)
	assert.Equal(t, NoticeNone, st.Notice)
	assert.Equal(t, 0, kv.Len())
}

func TestLogout_LeavesLockoutAlone(t *testing.T) {
	g, kv, _ := newGuard(t)
	ctx := context.Background()
	for i := 0; i < MaxAttempts; i++ {
		_, _ = login(g, "wrong")
	}
	require.NoError(t, g.Logout(ctx))

	_, found, _ := kv.Get(ctx, KeyBlocked)
	assert.True(t, found)
	attempts, _, _ := kv.Get(ctx, KeyAttempts)
	assert.Equal(t, "5", attempts)
}

func TestStatus_CorruptFieldsAreAbsent(t *testing.T) {
	g, kv, _ := newGuard(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, KeyAuth, "true"))
	require.NoError(t, kv.Set(ctx, KeyAuthTime, "yesterday"))
	require.NoError(t, kv.Set(ctx, KeyAttempts, "many"))
	require.NoError(t, kv.Set(ctx, KeyBlocked, "{}"))

	st, err := g.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, LoggedOut, st.Phase)
	assert.Zero(t, st.FailedAttempts)
}

func TestStatus_CounterIsClamped(t *testing.T) {
	g, kv, _ := newGuard(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, KeyAttempts, "42"))

	st, err := g.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, MaxAttempts, st.FailedAttempts)
	assert.Zero(t, st.RemainingAttempts)

	// with the counter already at the threshold the next failure locks
	_, err = login(g, "wrong")
	assert.ErrorIs(t, err, ErrLockedOut)
}

// slowKV stretches every read so unserialized read-modify-writes overlap.
type slowKV struct {
	*storage.Memory
}

func (s slowKV) Get(ctx context.Context, key string) (string, bool, error) {
	time.Sleep(time.Millisecond)
	return s.Memory.Get(ctx, key)
}

func TestAttemptLogin_ConcurrentFailuresStillLockAtThreshold(t *testing.T) {
	kv := slowKV{storage.NewMemory()}
	clock := &fakeClock{now: t0}
	var mu sync.Mutex

	const workers = 40
	var (
		wg        sync.WaitGroup
		resultsMu sync.Mutex
		incorrect int
		locked    int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// a fresh guard per call, sharing the lock, as the router builds them
			g := New(kv, secret, WithLock(&mu), WithClock(clock.Now), WithLogger(logging.Discard()))
			_, err := g.AttemptLogin(context.Background(), []byte("wrong"))

			resultsMu.Lock()
			defer resultsMu.Unlock()
			switch {
			case errors.Is(err, ErrIncorrectCredential):
				incorrect++
			case errors.Is(err, ErrLockedOut):
				locked++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, MaxAttempts-1, incorrect)
	assert.Equal(t, workers-MaxAttempts+1, locked)

	v, _, _ := kv.Get(context.Background(), KeyAttempts)
	assert.Equal(t, "5", v)
}
