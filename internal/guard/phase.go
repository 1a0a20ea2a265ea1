package guard

import "time"

const (
	MaxAttempts     = 5
	LockoutDuration = 15 * time.Minute
	SessionTTL      = 30 * time.Minute
)

// Phase is where a browser stands with respect to the admin panel.
type Phase int

const (
	LoggedOut Phase = iota
	Locked
	LoggedIn
)

func (p Phase) String() string {
	switch p {
	case Locked:
		return "locked"
	case LoggedIn:
		return "logged_in"
	default:
		return "logged_out"
	}
}

// Notice is a message the UI should surface alongside the phase.
type Notice string

const (
	NoticeNone           Notice = ""
	NoticeSessionExpired Notice = "session_expired"
)

// State is the persisted guard record of one browser. Zero times mean absent.
type State struct {
	Authenticated   bool
	AuthenticatedAt time.Time
	FailedAttempts  int
	LockedAt        time.Time
}

func (s State) hasSession() bool { return s.Authenticated && !s.AuthenticatedAt.IsZero() }

func (s State) hasLockout() bool { return !s.LockedAt.IsZero() }

// Evaluation is the outcome of Evaluate: the phase plus the cleanups the
// caller must persist for the stored state to match it.
type Evaluation struct {
	Phase  Phase
	Notice Notice
	// State is the record after cleanups.
	State State

	ClearedLockout   bool
	DiscardedSession bool
}

// Evaluate computes the phase of a stored record at now. It is pure; expiry is
// only ever noticed when something calls it.
func Evaluate(now time.Time, st State) Evaluation {
	ev := Evaluation{Phase: LoggedOut, State: st}

	if st.hasLockout() {
		if now.Before(st.LockedAt.Add(LockoutDuration)) {
			ev.Phase = Locked
			return ev
		}
		ev.State.LockedAt = time.Time{}
		ev.State.FailedAttempts = 0
		ev.ClearedLockout = true
	}

	if ev.State.hasSession() {
		if now.Sub(ev.State.AuthenticatedAt) < SessionTTL {
			ev.Phase = LoggedIn
			return ev
		}
		ev.State.Authenticated = false
		ev.State.AuthenticatedAt = time.Time{}
		ev.DiscardedSession = true
		ev.Notice = NoticeSessionExpired
	}

	return ev
}
