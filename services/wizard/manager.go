package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type sessionEntry struct {
	ctrl     *Controller
	lastSeen time.Time
}

// SessionManager holds the live wizard sessions of this process, one per browser session.
// Sessions idle longer than ttl are treated as abandoned and discarded.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	deps     Dependencies
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionManager(deps Dependencies, ttl time.Duration) *SessionManager {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionManager{
		sessions: make(map[string]*sessionEntry),
		deps:     deps,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Start creates a session on the first step.
func (m *SessionManager) Start() *Controller {
	id := uuid.New().String()
	ctrl := NewController(id, m.deps)

	m.mu.Lock()
	m.sessions[id] = &sessionEntry{ctrl: ctrl, lastSeen: m.now()}
	m.mu.Unlock()

	m.logger.Info("quote session started", zap.String("session", id))
	return ctrl
}

// Get returns a live session and refreshes its idle timer.
func (m *SessionManager) Get(id string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	entry.lastSeen = m.now()
	return entry.ctrl, nil
}

// Discard removes a session and cancels any in-flight submission.
func (m *SessionManager) Discard(id string) error {
	m.mu.Lock()
	entry, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	entry.ctrl.Discard()
	m.logger.Info("quote session discarded", zap.String("session", id))
	return nil
}

// Release drops a submitted session. Its booking has already been handed to checkout.
func (m *SessionManager) Release(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Len is the number of live sessions.
func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep discards sessions idle past the ttl and returns how many were removed.
func (m *SessionManager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var expired []*Controller
	for id, entry := range m.sessions {
		if entry.lastSeen.Before(cutoff) && !entry.ctrl.Pending() && !entry.ctrl.HandoffPending() {
			expired = append(expired, entry.ctrl)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, ctrl := range expired {
		ctrl.Discard()
	}
	if len(expired) > 0 {
		m.logger.Info("expired quote sessions discarded", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// RetryHandoffs retries checkout for submitted sessions whose booking was not
// recorded, releasing those that succeed. It returns how many are still outstanding.
func (m *SessionManager) RetryHandoffs(ctx context.Context) int {
	m.mu.Lock()
	var outstanding []*Controller
	for _, entry := range m.sessions {
		if entry.ctrl.HandoffPending() {
			outstanding = append(outstanding, entry.ctrl)
		}
	}
	m.mu.Unlock()

	left := 0
	for _, ctrl := range outstanding {
		if ctrl.RetryHandoff(ctx) {
			m.Release(ctrl.ID())
			m.logger.Info("checkout handoff recovered", zap.String("session", ctrl.ID()))
			continue
		}
		left++
	}
	return left
}

// Run sweeps and retries outstanding handoffs on a ticker until ctx is done.
func (m *SessionManager) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.RetryHandoffs(ctx)
			m.Sweep()
		}
	}
}
