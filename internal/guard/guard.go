// Package guard gates the admin panel behind a shared secret with attempt
// counting, a timed lockout and a session time-to-live.
//
// The secret is compared in plaintext. This is a convenience gate for a single
// operator, not a security boundary.
package guard

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strconv"
	"sync"
	"time"

	"toubkal-lib/internal/storage"

	log "github.com/sirupsen/logrus"
)

// Storage keys inside a browser scope.
const (
	KeyAuth     = "adminAuth"
	KeyAuthTime = "adminAuthTime"
	KeyAttempts = "adminAttempts"
	KeyBlocked  = "adminBlocked"
)

// Status is the evaluated guard state handed to the UI.
type Status struct {
	Phase             Phase
	Notice            Notice
	FailedAttempts    int
	RemainingAttempts int
	LockedUntil       time.Time
	SessionExpiresAt  time.Time
}

type Guard struct {
	mu     sync.Locker
	kv     storage.KV
	secret []byte
	now    func() time.Time
	log    log.FieldLogger
}

type Option func(*Guard)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithLock shares mu between guards over the same scope, so that their
// read-modify-write of the stored record does not interleave.
func WithLock(mu sync.Locker) Option {
	return func(g *Guard) { g.mu = mu }
}

func WithLogger(l log.FieldLogger) Option {
	return func(g *Guard) { g.log = l }
}

// New returns a guard over one browser scope of kv.
func New(kv storage.KV, secret string, opts ...Option) *Guard {
	g := &Guard{
		mu:     &sync.Mutex{},
		kv:     kv,
		secret: []byte(secret),
		now:    time.Now,
		log:    log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Status evaluates the stored record at the current time, persisting any
// expired lockout or session removal it implies.
func (g *Guard) Status(ctx context.Context) (Status, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ev, err := g.evaluate(ctx)
	if err != nil {
		return Status{}, err
	}
	return g.status(ev.Phase, ev.Notice, ev.State), nil
}

// AttemptLogin checks password against the secret. The password buffer is
// zeroed before returning.
func (g *Guard) AttemptLogin(ctx context.Context, password []byte) (Status, error) {
	defer clear(password)

	g.mu.Lock()
	defer g.mu.Unlock()

	ev, err := g.evaluate(ctx)
	if err != nil {
		return Status{}, err
	}
	switch ev.Phase {
	case Locked:
		st := g.status(Locked, ev.Notice, ev.State)
		return st, &AuthError{Kind: ErrLockedOut, LockedUntil: st.LockedUntil}
	case LoggedIn:
		return g.status(LoggedIn, ev.Notice, ev.State), ErrAlreadyAuthenticated
	}

	now := g.now()
	state := ev.State

	if subtle.ConstantTimeCompare(password, g.secret) == 1 {
		if err := g.kv.Set(ctx, KeyAuth, "true"); err != nil {
			return Status{}, fmt.Errorf("persist session: %w", err)
		}
		if err := g.kv.Set(ctx, KeyAuthTime, formatMillis(now)); err != nil {
			return Status{}, fmt.Errorf("persist session: %w", err)
		}
		if err := g.kv.Delete(ctx, KeyAttempts, KeyBlocked); err != nil {
			return Status{}, fmt.Errorf("clear lockout: %w", err)
		}
		g.log.Info("admin login succeeded")
		state = State{Authenticated: true, AuthenticatedAt: now}
		return g.status(LoggedIn, NoticeNone, state), nil
	}

	state.FailedAttempts = min(state.FailedAttempts+1, MaxAttempts)
	if err := g.kv.Set(ctx, KeyAttempts, strconv.Itoa(state.FailedAttempts)); err != nil {
		return Status{}, fmt.Errorf("persist attempts: %w", err)
	}

	if state.FailedAttempts >= MaxAttempts {
		state.LockedAt = now
		if err := g.kv.Set(ctx, KeyBlocked, formatMillis(now)); err != nil {
			return Status{}, fmt.Errorf("persist lockout: %w", err)
		}
		g.log.WithField("attempts", state.FailedAttempts).Warn("admin login locked out")
		st := g.status(Locked, NoticeNone, state)
		return st, &AuthError{Kind: ErrLockedOut, LockedUntil: st.LockedUntil, JustLocked: true}
	}

	g.log.WithField("attempts", state.FailedAttempts).Info("admin login rejected")
	st := g.status(LoggedOut, NoticeNone, state)
	return st, &AuthError{Kind: ErrIncorrectCredential, Remaining: st.RemainingAttempts}
}

// Logout discards the session. It is a no-op unless the scope is logged in.
func (g *Guard) Logout(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	ev, err := g.evaluate(ctx)
	if err != nil {
		return err
	}
	if ev.Phase != LoggedIn {
		return nil
	}
	if err := g.kv.Delete(ctx, KeyAuth, KeyAuthTime, KeyAttempts); err != nil {
		return fmt.Errorf("discard session: %w", err)
	}
	g.log.Info("admin logged out")
	return nil
}

func (g *Guard) evaluate(ctx context.Context) (Evaluation, error) {
	st, err := g.load(ctx)
	if err != nil {
		return Evaluation{}, err
	}
	ev := Evaluate(g.now(), st)
	if ev.ClearedLockout {
		if err := g.kv.Delete(ctx, KeyBlocked, KeyAttempts); err != nil {
			return Evaluation{}, fmt.Errorf("clear expired lockout: %w", err)
		}
	}
	if ev.DiscardedSession {
		if err := g.kv.Delete(ctx, KeyAuth, KeyAuthTime); err != nil {
			return Evaluation{}, fmt.Errorf("discard expired session: %w", err)
		}
	}
	return ev, nil
}

// load reads the scope's record. Unparsable fields are treated as absent.
func (g *Guard) load(ctx context.Context) (State, error) {
	var st State

	auth, _, err := g.kv.Get(ctx, KeyAuth)
	if err != nil {
		return st, fmt.Errorf("load session: %w", err)
	}
	authTime, _, err := g.kv.Get(ctx, KeyAuthTime)
	if err != nil {
		return st, fmt.Errorf("load session: %w", err)
	}
	attempts, _, err := g.kv.Get(ctx, KeyAttempts)
	if err != nil {
		return st, fmt.Errorf("load attempts: %w", err)
	}
	blocked, _, err := g.kv.Get(ctx, KeyBlocked)
	if err != nil {
		return st, fmt.Errorf("load lockout: %w", err)
	}

	if at, ok := parseMillis(authTime); ok && auth == "true" {
		st.Authenticated = true
		st.AuthenticatedAt = at
	}
	if n, err := strconv.Atoi(attempts); err == nil {
		st.FailedAttempts = min(max(n, 0), MaxAttempts)
	}
	if at, ok := parseMillis(blocked); ok {
		st.LockedAt = at
	}
	return st, nil
}

func (g *Guard) status(phase Phase, notice Notice, st State) Status {
	s := Status{
		Phase:             phase,
		Notice:            notice,
		FailedAttempts:    st.FailedAttempts,
		RemainingAttempts: max(MaxAttempts-st.FailedAttempts, 0),
	}
	if phase == Locked {
		s.LockedUntil = st.LockedAt.Add(LockoutDuration)
	}
	if phase == LoggedIn {
		s.SessionExpiresAt = st.AuthenticatedAt.Add(SessionTTL)
	}
	return s
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

func parseMillis(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
