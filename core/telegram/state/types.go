package state

import (
	"time"

	tele "gopkg.in/telebot.v4"
)

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores conversation state and temporary data for a user.
type Session struct {
	// ID correlates the updates of one conversation in logs.
	ID        string
	State     State
	TempData  map[string]any
	StartedAt time.Time
}

// Manager orchestrates user sessions and FSM state transitions.
type Manager interface {
	// Get returns a snapshot of the user's session, or an idle one.
	Get(userID int64) Session
	// Update applies fn to the user's session under the store lock,
	// creating the session if needed.
	Update(userID int64, fn func(*Session))
	// Reset replaces the user's session with a fresh one in the given state.
	Reset(userID int64, st State) Session
	SetTemp(userID int64, key string, value any)
	GetTemp(userID int64, key string) (any, bool)
	GetTempInt(userID int64, key string) (int, bool)
	GetTempStrings(userID int64, key string) ([]string, bool)
	ClearTemp(userID int64, key string)
	Clear(userID int64)

	// Dialog state
	SetState(userID int64, st State)
	GetState(userID int64) State
	InProgress(userID int64) bool
	Len() int

	// Lock serializes handlers of one user; call the returned func to release.
	Lock(userID int64) func()

	// Handle binds a transport handler to a dialog state.
	Handle(st State, h tele.HandlerFunc)
	ManagerHandler(c tele.Context) error
}
