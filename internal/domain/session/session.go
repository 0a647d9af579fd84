package session

import (
	"errors"
	"time"

	"github.com/Nyukimin/schooloo/internal/domain/routing"
)

// ErrSessionNotFound is returned when no session exists for an id
var ErrSessionNotFound = errors.New("session not found")

// TurnKind tells how a turn was answered
type TurnKind string

const (
	TurnDispatch TurnKind = "dispatch"
	TurnChat     TurnKind = "chat"
)

// Turn is one question/answer exchange
type Turn struct {
	JobID string
	Kind  TurnKind
	Query string
	Tools []string
	Reply string
	At    time.Time
}

// Session holds the exchanges of one conversation
type Session struct {
	id        string
	channel   string       // http, ws, cli
	role      routing.Role // role of the first query
	history   []Turn
	memory    map[string]interface{}
	createdAt time.Time
	updatedAt time.Time
}

// NewSession creates a new Session
func NewSession(id, channel string, role routing.Role) *Session {
	now := time.Now()
	return &Session{
		id:        id,
		channel:   channel,
		role:      role,
		history:   make([]Turn, 0),
		memory:    make(map[string]interface{}),
		createdAt: now,
		updatedAt: now,
	}
}

// ReconstructSession restores a Session from storage, keeping its timestamps
func ReconstructSession(id, channel string, role routing.Role, createdAt, updatedAt time.Time) *Session {
	return &Session{
		id:        id,
		channel:   channel,
		role:      role,
		history:   make([]Turn, 0),
		memory:    make(map[string]interface{}),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Channel returns the channel the session was opened on
func (s *Session) Channel() string {
	return s.channel
}

// Role returns the session role
func (s *Session) Role() routing.Role {
	return s.role
}

// CreatedAt returns the creation time
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// UpdatedAt returns the last update time
func (s *Session) UpdatedAt() time.Time {
	return s.updatedAt
}

// AddTurn appends an exchange to the history
func (s *Session) AddTurn(t Turn) {
	if t.At.IsZero() {
		t.At = time.Now()
	}
	s.history = append(s.history, t)
	s.updatedAt = time.Now()
}

// RestoreTurns appends stored turns without touching updatedAt
func (s *Session) RestoreTurns(turns []Turn) {
	s.history = append(s.history, turns...)
}

// GetHistory returns the full history
func (s *Session) GetHistory() []Turn {
	return s.history
}

// GetRecentHistory returns the last n turns
func (s *Session) GetRecentHistory(n int) []Turn {
	if len(s.history) <= n {
		return s.history
	}
	return s.history[len(s.history)-n:]
}

// SetMemory stores a value in session memory
func (s *Session) SetMemory(key string, value interface{}) {
	s.memory[key] = value
	s.updatedAt = time.Now()
}

// RestoreMemory loads stored memory without touching updatedAt
func (s *Session) RestoreMemory(memory map[string]interface{}) {
	for k, v := range memory {
		s.memory[k] = v
	}
}

// GetMemory reads a value from session memory
func (s *Session) GetMemory(key string) (interface{}, bool) {
	value, ok := s.memory[key]
	return value, ok
}

// GetAllMemory returns a copy of session memory
func (s *Session) GetAllMemory() map[string]interface{} {
	result := make(map[string]interface{}, len(s.memory))
	for k, v := range s.memory {
		result[k] = v
	}
	return result
}

// ClearMemory empties session memory
func (s *Session) ClearMemory() {
	s.memory = make(map[string]interface{})
	s.updatedAt = time.Now()
}

// HistoryCount returns the number of turns
func (s *Session) HistoryCount() int {
	return len(s.history)
}
