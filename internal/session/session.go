// Package session wires websocket connections to world state: parsing
// inbound packets, tracking per-connection dialect and viewport, and
// driving the fixed-timestep broadcast loop.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"slither-server/internal/game"
	"slither-server/internal/wire"
)

// Session is one connected client: its socket, its chosen wire dialect,
// and the snake it controls once identified.
type Session struct {
	ID   string
	conn *websocket.Conn

	mu     sync.Mutex
	closed bool

	ProtocolVersion uint8
	Dialect         wire.Dialect

	SnakeID  uint16
	HasSnake bool

	LastPacketAt time.Time
	DeathAt      time.Time // zero if alive or not yet dead

	// KnownSectors is the set of grid sectors this client has been told
	// about via add-sector packets; the broadcast pass diffs against it
	// each tick to emit only the add/remove delta.
	KnownSectors map[game.SectorCoord]bool

	// KnownSnakes is the set of snake IDs this client currently holds an
	// add-snake packet for, diffed the same way as KnownSectors.
	KnownSnakes map[uint16]bool
}

// NewSession wraps an accepted websocket connection.
func NewSession(ws *websocket.Conn) *Session {
	return &Session{
		ID:           uuid.New().String(),
		conn:         ws,
		LastPacketAt: time.Now(),
		KnownSectors: make(map[game.SectorCoord]bool),
		KnownSnakes:  make(map[uint16]bool),
	}
}

// Send writes a single binary frame. Safe for concurrent use; a closed
// session silently drops the write.
func (s *Session) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.conn.WriteMessage(websocket.BinaryMessage, data)
}

// ReadMessage reads the next client frame.
func (s *Session) ReadMessage() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	return data, err
}

// Close sends a normal-closure control frame, then releases the socket.
// Safe to call more than once; only the first call has any effect.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	s.conn.Close()
}

// Manager tracks every live session, indexed both by connection ID and by
// the in-game snake ID once one is assigned.
type Manager struct {
	mu       sync.RWMutex
	byConn   map[string]*Session
	bySnake  map[uint16]*Session
}

func NewManager() *Manager {
	return &Manager{
		byConn:  make(map[string]*Session),
		bySnake: make(map[uint16]*Session),
	}
}

func (m *Manager) Add(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byConn[s.ID] = s
}

func (m *Manager) Remove(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byConn, s.ID)
	if s.HasSnake {
		delete(m.bySnake, s.SnakeID)
	}
}

// BindSnake associates a session with its newly created snake ID.
func (m *Manager) BindSnake(s *Session, snakeID uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.SnakeID = snakeID
	s.HasSnake = true
	m.bySnake[snakeID] = s
}

func (m *Manager) BySnake(id uint16) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.bySnake[id]
	return s, ok
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byConn)
}

// Snapshot returns a stable copy of all live sessions for iteration
// outside the manager's own lock.
func (m *Manager) Snapshot() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.byConn))
	for _, s := range m.byConn {
		out = append(out, s)
	}
	return out
}
