package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.UnixMilli(1_700_000_000_000)

func TestEvaluate_Empty(t *testing.T) {
	ev := Evaluate(t0, State{})
	assert.Equal(t, LoggedOut, ev.Phase)
	assert.Equal(t, NoticeNone, ev.Notice)
	assert.False(t, ev.ClearedLockout)
	assert.False(t, ev.DiscardedSession)
}

func TestEvaluate_LockoutBoundary(t *testing.T) {
	st := State{FailedAttempts: MaxAttempts, LockedAt: t0}

	ev := Evaluate(t0.Add(LockoutDuration-time.Millisecond), st)
	assert.Equal(t, Locked, ev.Phase)
	assert.False(t, ev.ClearedLockout)

	ev = Evaluate(t0.Add(LockoutDuration+time.Millisecond), st)
	assert.Equal(t, LoggedOut, ev.Phase)
	assert.True(t, ev.ClearedLockout)
	assert.Zero(t, ev.State.FailedAttempts)
	assert.True(t, ev.State.LockedAt.IsZero())
}

func TestEvaluate_LockoutWinsOverSession(t *testing.T) {
	st := State{Authenticated: true, AuthenticatedAt: t0, FailedAttempts: MaxAttempts, LockedAt: t0}
	assert.Equal(t, Locked, Evaluate(t0.Add(time.Minute), st).Phase)
}

func TestEvaluate_SessionBoundary(t *testing.T) {
	st := State{Authenticated: true, AuthenticatedAt: t0}

	ev := Evaluate(t0.Add(SessionTTL-time.Millisecond), st)
	assert.Equal(t, LoggedIn, ev.Phase)
	assert.False(t, ev.DiscardedSession)

	ev = Evaluate(t0.Add(SessionTTL+time.Millisecond), st)
	assert.Equal(t, LoggedOut, ev.Phase)
	assert.True(t, ev.DiscardedSession)
	assert.Equal(t, NoticeSessionExpired, ev.Notice)
	assert.False(t, ev.State.Authenticated)

	// exactly at the TTL the session is already gone
	assert.Equal(t, LoggedOut, Evaluate(t0.Add(SessionTTL), st).Phase)
}

func TestEvaluate_ExpiredLockoutFallsThroughToSession(t *testing.T) {
	later := t0.Add(LockoutDuration + time.Minute)
	st := State{Authenticated: true, AuthenticatedAt: later, FailedAttempts: 2, LockedAt: t0}

	ev := Evaluate(later.Add(time.Minute), st)
	assert.Equal(t, LoggedIn, ev.Phase)
	assert.True(t, ev.ClearedLockout)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "logged_out", LoggedOut.String())
	assert.Equal(t, "locked", Locked.String())
	assert.Equal(t, "logged_in", LoggedIn.String())
}
