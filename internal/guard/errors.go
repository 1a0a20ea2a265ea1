package guard

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrIncorrectCredential  = errors.New("guard: incorrect credential")
	ErrLockedOut            = errors.New("guard: locked out")
	ErrAlreadyAuthenticated = errors.New("guard: already authenticated")
)

// AuthError carries the details the login form needs to render feedback.
// Kind is ErrIncorrectCredential or ErrLockedOut, so errors.Is works on it.
// JustLocked is set when this attempt was the one that triggered the lockout.
type AuthError struct {
	Kind        error
	Remaining   int
	LockedUntil time.Time
	JustLocked  bool
}

func (e *AuthError) Error() string {
	if errors.Is(e.Kind, ErrLockedOut) {
		return fmt.Sprintf("%v until %s", e.Kind, e.LockedUntil.Format(time.RFC3339))
	}
	return fmt.Sprintf("%v, %d attempts remaining", e.Kind, e.Remaining)
}

func (e *AuthError) Unwrap() error { return e.Kind }
