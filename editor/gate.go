package editor

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
)

// ErrWrongPassword is returned by an Authenticator when the password does
// not match.
var ErrWrongPassword = errors.New("editor: wrong password")

// State is the unlock state of a Gate.
type State int

const (
	Locked State = iota
	Unlocked
)

func (s State) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// Authenticator checks the shared admin password.
type Authenticator interface {
	Authenticate(ctx context.Context, password string) error
}

// SecretAuthenticator accepts exactly one password, compared in constant
// time.
type SecretAuthenticator string

// Authenticate implements Authenticator.
func (s SecretAuthenticator) Authenticate(_ context.Context, password string) error {
	if s == "" || subtle.ConstantTimeCompare([]byte(password), []byte(s)) != 1 {
		return ErrWrongPassword
	}
	return nil
}

// Gate guards the editor. It starts Locked and moves to Unlocked once a
// password is accepted; there is no transition back.
type Gate struct {
	mu    sync.Mutex
	state State
	auth  Authenticator
}

// NewGate returns a locked Gate that checks passwords with auth.
func NewGate(auth Authenticator) *Gate {
	return &Gate{auth: auth}
}

// Unlock tries password. On failure the gate stays as it was and the
// Authenticator's error is returned. Unlocking an unlocked gate is a no-op.
func (g *Gate) Unlock(ctx context.Context, password string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == Unlocked {
		return nil
	}
	if err := g.auth.Authenticate(ctx, password); err != nil {
		return err
	}
	g.state = Unlocked
	return nil
}

// State returns the current state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// IsUnlocked reports whether the gate has been unlocked.
func (g *Gate) IsUnlocked() bool {
	return g.State() == Unlocked
}
