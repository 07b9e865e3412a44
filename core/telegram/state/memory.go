package state

import (
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/mealbot/core/logger"
	tghelpers "github.com/m3rciful/mealbot/core/telegram/helpers"
)

type userLock struct {
	mu   sync.Mutex
	refs int
}

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]*Session

	locksMu sync.Mutex
	locks   map[int64]*userLock

	handlersMu sync.RWMutex
	handlers   map[State]tele.HandlerFunc

	now func() time.Time
}

// NewMemoryManager constructs an in-memory Manager.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
		locks:    make(map[int64]*userLock),
		handlers: make(map[State]tele.HandlerFunc),
		now:      time.Now,
	}
}

func (m *memoryManager) newSession(st State) *Session {
	return &Session{
		ID:        uuid.NewString(),
		State:     st,
		TempData:  make(map[string]any),
		StartedAt: m.now(),
	}
}

// sessionLocked returns the user's session, creating an idle one. Caller holds m.mu.
func (m *memoryManager) sessionLocked(userID int64) *Session {
	s, ok := m.sessions[userID]
	if !ok {
		s = m.newSession(StateIdle)
		m.sessions[userID] = s
	}
	return s
}

// Get returns a copy of the session for a user if it exists, otherwise a default idle session.
func (m *memoryManager) Get(userID int64) Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	if !ok {
		return Session{State: StateIdle, TempData: map[string]any{}}
	}
	out := *s
	out.TempData = maps.Clone(s.TempData)
	return out
}

// Update mutates the session in place under the store lock.
func (m *memoryManager) Update(userID int64, fn func(*Session)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.sessionLocked(userID))
}

// Reset discards the previous session and starts a new conversation.
func (m *memoryManager) Reset(userID int64, st State) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.newSession(st)
	m.sessions[userID] = s
	out := *s
	out.TempData = map[string]any{}
	return out
}

// SetTemp stores a temporary key/value pair for the given user session.
func (m *memoryManager) SetTemp(userID int64, key string, value any) {
	m.Update(userID, func(s *Session) { s.TempData[key] = value })
}

// GetTemp retrieves a temporary value by key for the given user session.
func (m *memoryManager) GetTemp(userID int64, key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, false
	}
	val, ok := s.TempData[key]
	return val, ok
}

// GetTempInt retrieves a temporary value by key and asserts it as int.
func (m *memoryManager) GetTempInt(userID int64, key string) (int, bool) {
	val, found := m.GetTemp(userID, key)
	if !found {
		return 0, false
	}
	v, ok := val.(int)
	return v, ok
}

// GetTempStrings retrieves a temporary string slice; the result is a copy.
func (m *memoryManager) GetTempStrings(userID int64, key string) ([]string, bool) {
	val, found := m.GetTemp(userID, key)
	if !found {
		return nil, false
	}
	v, ok := val.([]string)
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// ClearTemp removes a temporary key/value pair for the given user session.
func (m *memoryManager) ClearTemp(userID int64, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		delete(s.TempData, key)
	}
}

// Clear removes the entire session for a user.
func (m *memoryManager) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// SetState sets the FSM state for the given user.
func (m *memoryManager) SetState(userID int64, st State) {
	m.Update(userID, func(s *Session) { s.State = st })
}

// GetState returns the current FSM state of a user, or StateIdle if none exists.
func (m *memoryManager) GetState(userID int64) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[userID]; ok {
		return s.State
	}
	return StateIdle
}

// InProgress reports whether the user currently has an active FSM state.
func (m *memoryManager) InProgress(userID int64) bool {
	return m.GetState(userID) != StateIdle
}

// Len reports the number of stored sessions.
func (m *memoryManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Lock acquires the per-user mutex. Entries are reference counted so idle
// users do not accumulate.
func (m *memoryManager) Lock(userID int64) func() {
	m.locksMu.Lock()
	l, ok := m.locks[userID]
	if !ok {
		l = &userLock{}
		m.locks[userID] = l
	}
	l.refs++
	m.locksMu.Unlock()

	l.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			m.locksMu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(m.locks, userID)
			}
			m.locksMu.Unlock()
		})
	}
}

// Handle registers the handler invoked by ManagerHandler for st.
func (m *memoryManager) Handle(st State, h tele.HandlerFunc) {
	if h == nil {
		return
	}
	m.handlersMu.Lock()
	defer m.handlersMu.Unlock()
	m.handlers[st] = h
}

// ManagerHandler executes the handler function registered for the user's current state, if any.
func (m *memoryManager) ManagerHandler(c tele.Context) error {
	userID := c.Sender().ID
	current := m.GetState(userID)
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "fsm.manager",
		slog.Int64("user_id", userID),
		slog.String("state", string(current)),
	)

	m.handlersMu.RLock()
	handler, ok := m.handlers[current]
	m.handlersMu.RUnlock()
	if ok {
		return handler(c)
	}
	return nil
}
