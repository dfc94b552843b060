package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pantrypairing/server/internal/domain/shared"
	"github.com/pantrypairing/server/internal/ports/inbound"
)

// Recorder receives the number of live sessions. monitoring.Metrics
// implements it.
type Recorder interface {
	SetActiveSessions(n int)
}

// SessionCloser is implemented by publishers that hold per-session
// resources, such as open event streams. The manager releases them when a
// session ends or is evicted.
type SessionCloser interface {
	CloseSession(id string)
}

// ManagerConfig tunes session lifetime and the per-session store.
type ManagerConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
	Store         StoreConfig
}

// Session is one live session.
type Session struct {
	ID        string
	CreatedAt time.Time
	Store     *Store

	lastAccess atomic.Int64
}

// LastAccess returns when the session was last used.
func (s *Session) LastAccess() time.Time {
	return time.Unix(0, s.lastAccess.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastAccess.Store(now.UnixNano())
}

// Manager creates, finds and evicts sessions and tracks background AI work
// so shutdown can wait for it.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	gateway   inbound.AIGateway
	publisher shared.EventPublisher
	recorder  Recorder
	config    ManagerConfig
	logger    *zap.Logger
	now       func() time.Time

	work     sync.WaitGroup
	stopOnce sync.Once
	stop     chan struct{}
}

// NewManager creates a manager. publisher and recorder may be nil.
func NewManager(gateway inbound.AIGateway, publisher shared.EventPublisher, recorder Recorder, config ManagerConfig, logger *zap.Logger) *Manager {
	if config.IdleTTL <= 0 {
		config.IdleTTL = 2 * time.Hour
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = time.Minute
	}
	now := config.Store.Now
	if now == nil {
		now = time.Now
	}

	return &Manager{
		sessions:  make(map[string]*Session),
		gateway:   gateway,
		publisher: publisher,
		recorder:  recorder,
		config:    config,
		logger:    logger.Named("session"),
		now:       now,
		stop:      make(chan struct{}),
	}
}

// Create starts a new session.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	now := m.now()
	sess := &Session{
		ID:        id,
		CreatedAt: now,
		Store:     NewStore(id, m.gateway, m.publisher, m.config.Store, m.logger),
	}
	sess.touch(now)

	m.mu.Lock()
	m.sessions[id] = sess
	n := len(m.sessions)
	m.mu.Unlock()

	m.report(n)
	m.logger.Info("Session created", zap.String("session_id", id), zap.Int("active", n))
	return sess
}

// Get returns a live session and marks it used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.touch(m.now())
	return sess, nil
}

// End removes a session.
func (m *Manager) End(id string) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()

	if ok {
		m.report(n)
		m.release(id)
		m.logger.Info("Session ended", zap.String("session_id", id))
	}
	return ok
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep evicts sessions idle longer than IdleTTL and returns how many were
// evicted.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.config.IdleTTL)

	m.mu.Lock()
	var evicted []string
	for id, sess := range m.sessions {
		if sess.LastAccess().Before(cutoff) {
			delete(m.sessions, id)
			evicted = append(evicted, id)
		}
	}
	n := len(m.sessions)
	m.mu.Unlock()

	for _, id := range evicted {
		m.release(id)
	}
	if len(evicted) > 0 {
		m.report(n)
		m.logger.Info("Idle sessions evicted", zap.Int("evicted", len(evicted)), zap.Int("active", n))
	}
	return len(evicted)
}

// Go runs fn in the background, detached from the caller's cancellation.
// Stop waits for it.
func (m *Manager) Go(ctx context.Context, fn func(ctx context.Context)) {
	m.work.Add(1)
	go func() {
		defer m.work.Done()
		fn(context.WithoutCancel(ctx))
	}()
}

// Start launches the idle sweeper.
func (m *Manager) Start(context.Context) error {
	go func() {
		ticker := time.NewTicker(m.config.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-m.stop:
				return
			}
		}
	}()
	m.logger.Info("Session sweeper started",
		zap.Duration("idle_ttl", m.config.IdleTTL),
		zap.Duration("interval", m.config.SweepInterval),
	)
	return nil
}

// Stop halts the sweeper and waits for background AI work until ctx ends.
func (m *Manager) Stop(ctx context.Context) error {
	m.stopOnce.Do(func() { close(m.stop) })

	drained := make(chan struct{})
	go func() {
		m.work.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		m.logger.Info("Background AI work drained")
		return nil
	case <-ctx.Done():
		m.logger.Warn("Shutdown deadline reached with AI work in flight")
		return ctx.Err()
	}
}

func (m *Manager) release(id string) {
	if closer, ok := m.publisher.(SessionCloser); ok {
		closer.CloseSession(id)
	}
}

func (m *Manager) report(n int) {
	if m.recorder != nil {
		m.recorder.SetActiveSessions(n)
	}
}
