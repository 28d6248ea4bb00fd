package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/wricardo/memory-match-game/game/engine"
)

// MaxEventHistory bounds the number of events kept per session; the oldest
// are dropped first
const MaxEventHistory = 2000

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, configName string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	FlipCard(ctx context.Context, sessionID, cardID string) (*FlipResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.GameState, error)
	SetMatchesToSpawn(ctx context.Context, sessionID string, matches int) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetEventHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Configuration
	ListConfigs(ctx context.Context) ([]*ConfigInfo, error)
	LoadConfig(ctx context.Context, configName string) (*engine.GameConfig, error)
	SaveConfig(ctx context.Context, configName string, config *engine.GameConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, config *engine.GameConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, config *engine.GameConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles game configuration loading
type ConfigManager interface {
	LoadConfig(name string) (*engine.GameConfig, error)
	ListConfigs() ([]*ConfigInfo, error)
	GetDefault() *engine.GameConfig
	SaveConfig(name string, config *engine.GameConfig) error
}

// Notifier pushes session updates to connected clients. Implementations are
// called with the engine lock held and must not block.
type Notifier interface {
	BroadcastToSession(sessionID string, state *engine.GameState)
	BroadcastEvent(sessionID string, event string, data interface{})
}

// Session represents an active game session. The last access time is
// touched by concurrent requests and is only read through LastAccessed.
type Session struct {
	ID        string
	Engine    *engine.GameEngine
	Config    *engine.GameConfig
	Events    *EventLog
	CreatedAt time.Time

	mu             sync.Mutex
	lastAccessedAt time.Time
}

// Touch records an access at the current time
func (s *Session) Touch() {
	s.SetLastAccessed(time.Now())
}

// SetLastAccessed overrides the last access time
func (s *Session) SetLastAccessed(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccessedAt = t
}

// LastAccessed returns the time of the most recent access
func (s *Session) LastAccessed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastAccessedAt
}

// EngineFactory builds the engine of a session. The session ID and event log
// are known before the engine exists so presenters can be attached.
type EngineFactory func(sessionID string, config *engine.GameConfig, events *EventLog, opts ...engine.Option) (*engine.GameEngine, error)

// NewEngineFactory returns a factory whose engines record every presentation
// call in the session event log and forward events and timer-driven state
// changes to notifier. A nil notifier only records.
func NewEngineFactory(notifier Notifier) EngineFactory {
	return func(sessionID string, config *engine.GameConfig, events *EventLog, opts ...engine.Option) (*engine.GameEngine, error) {
		presenter := &eventPresenter{
			sessionID: sessionID,
			events:    events,
			notifier:  notifier,
		}

		base := []engine.Option{engine.WithPresenter(presenter)}
		if notifier != nil {
			base = append(base, engine.WithStateListener(func(state *engine.GameState) {
				notifier.BroadcastToSession(sessionID, state)
			}))
		}

		return engine.NewEngine(config, append(base, opts...)...)
	}
}

// EventLog is a bounded, concurrency-safe list of game events
type EventLog struct {
	mu     sync.Mutex
	events []GameEvent
	seq    int
}

// NewEventLog creates an event log, optionally seeded with persisted events
func NewEventLog(events ...GameEvent) *EventLog {
	l := &EventLog{}
	for _, e := range events {
		l.events = append(l.events, e)
		if e.Seq > l.seq {
			l.seq = e.Seq
		}
	}
	l.trim()
	return l
}

// Append stamps the event with the next sequence number and stores it
func (l *EventLog) Append(e GameEvent) GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.seq++
	e.Seq = l.seq
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	l.events = append(l.events, e)
	l.trim()
	return e
}

// Events returns a copy of every stored event, oldest first
func (l *EventLog) Events() []GameEvent {
	if l == nil {
		return []GameEvent{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	out := slices.Clone(l.events)
	if out == nil {
		out = []GameEvent{}
	}
	return out
}

// Len returns the number of stored events
func (l *EventLog) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func (l *EventLog) trim() {
	if over := len(l.events) - MaxEventHistory; over > 0 {
		l.events = slices.Delete(l.events, 0, over)
	}
}
