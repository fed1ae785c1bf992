package stm

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// messageCap and eventCap bound per-session history; older items roll
	// off the front.
	messageCap = 50
	eventCap   = 100

	defaultSessionTTL  = 30 * time.Minute
	defaultMaxSessions = 1024
)

// Message is one turn in the session message stream.
type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// SessionEvent is a lightweight in-session occurrence, e.g. an artifact
// materialization.
type SessionEvent struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
	At      time.Time      `json:"at"`
}

// Session is the per-session scratchpad state. All access goes through its
// mutex; sessions are shared across handler goroutines.
type Session struct {
	mu sync.Mutex

	ID              string
	Messages        []Message
	Events          []SessionEvent
	Goals           []string
	Route           string
	RouteConfidence float64
	Status          string
	CreatedAt       time.Time
}

// AppendMessage adds a turn, evicting the oldest past the cap.
func (s *Session) AppendMessage(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Messages = append(s.Messages, Message{Role: role, Content: content, At: time.Now()})
	if len(s.Messages) > messageCap {
		s.Messages = s.Messages[len(s.Messages)-messageCap:]
	}
}

// AppendEvent adds an event, evicting the oldest past the cap.
func (s *Session) AppendEvent(eventType string, payload map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, SessionEvent{Type: eventType, Payload: payload, At: time.Now()})
	if len(s.Events) > eventCap {
		s.Events = s.Events[len(s.Events)-eventCap:]
	}
}

// AddGoal records a goal once.
func (s *Session) AddGoal(goal string) {
	if goal == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.Goals {
		if g == goal {
			return
		}
	}
	s.Goals = append(s.Goals, goal)
}

// SetRoute records the route decision for the current turn.
func (s *Session) SetRoute(route string, confidence float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Route = route
	s.RouteConfidence = confidence
}

// RecentMessages returns a copy of the newest n messages.
func (s *Session) RecentMessages(n int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.Messages
	if len(msgs) > n {
		msgs = msgs[len(msgs)-n:]
	}
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// CurrentRoute returns the last recorded route.
func (s *Session) CurrentRoute() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Route
}

// Scratchpad holds TTL'd per-session state in process memory. Sessions
// expire on inactivity; a restart simply starts sessions fresh.
type Scratchpad struct {
	sessions *expirable.LRU[string, *Session]
}

func NewScratchpad(ttl time.Duration) *Scratchpad {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &Scratchpad{
		sessions: expirable.NewLRU[string, *Session](defaultMaxSessions, nil, ttl),
	}
}

// Get returns the session for id, creating it on first touch.
func (s *Scratchpad) Get(id string) *Session {
	if session, ok := s.sessions.Get(id); ok {
		return session
	}
	session := &Session{ID: id, Status: "active", CreatedAt: time.Now()}
	s.sessions.Add(id, session)
	return session
}

// Len reports the number of live sessions.
func (s *Scratchpad) Len() int { return s.sessions.Len() }
