package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"onlinestore/internal/cart"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	engine   *cart.Engine
	lastSeen time.Time
}

// Manager keeps one cart engine per shopping session and drops sessions
// that stay idle longer than the TTL.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	ttl    time.Duration
	symbol string
	logger *zap.Logger
	now    func() time.Time
}

// New returns a Manager whose carts format totals with currencySymbol.
// A non-positive ttl means 24h; a nil logger discards output.
func New(ttl time.Duration, currencySymbol string, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		symbol:   currencySymbol,
		logger:   logger,
		now:      time.Now,
	}
}

// Create starts a session with an empty cart.
func (m *Manager) Create() (string, *cart.Engine, error) {
	id := uuid.NewString()
	engine, err := cart.New(
		cart.WithCurrencySymbol(m.symbol),
		cart.WithLogger(m.logger.With(zap.String("session_id", id))),
	)
	if err != nil {
		return "", nil, err
	}
	m.mu.Lock()
	m.sessions[id] = &entry{engine: engine, lastSeen: m.now()}
	m.mu.Unlock()
	m.logger.Info("session: created", zap.String("session_id", id))
	return id, engine, nil
}

// Get returns the engine for id and refreshes its idle timer.
func (m *Manager) Get(id string) (*cart.Engine, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if now.Sub(e.lastSeen) > m.ttl {
		delete(m.sessions, id)
		m.logger.Info("session: expired", zap.String("session_id", id))
		return nil, ErrSessionNotFound
	}
	e.lastSeen = now
	return e.engine, nil
}

// Delete drops the session; unknown ids are ignored.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sweep removes sessions idle since before now-TTL and reports how many went.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.sessions {
		if now.Sub(e.lastSeen) > m.ttl {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("session: sweep", zap.Int("removed", removed), zap.Int("remaining", len(m.sessions)))
	}
	return removed
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Run sweeps every interval until stop is closed.
func (m *Manager) Run(interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case t := <-ticker.C:
			m.Sweep(t)
		}
	}
}
