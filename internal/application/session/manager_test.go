package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pantrypairing/server/internal/application/session"
	"github.com/pantrypairing/server/internal/domain/shared"
	"github.com/pantrypairing/server/test/testutils"
)

type gaugeRecorder struct {
	mu     sync.Mutex
	values []int
}

func (g *gaugeRecorder) SetActiveSessions(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values = append(g.values, n)
}

func (g *gaugeRecorder) last() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.values) == 0 {
		return -1
	}
	return g.values[len(g.values)-1]
}

type closingPublisher struct {
	mu     sync.Mutex
	closed []string
}

func (p *closingPublisher) Publish(shared.DomainEvent) {}

func (p *closingPublisher) CloseSession(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, id)
}

func (p *closingPublisher) Closed() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.closed...)
}

func newManager(t *testing.T, now *time.Time, gauge session.Recorder) *session.Manager {
	return session.NewManager(testutils.NewMockAIGateway(), nil, gauge, session.ManagerConfig{
		IdleTTL:       30 * time.Minute,
		SweepInterval: time.Hour,
		Store: session.StoreConfig{
			Now: func() time.Time { return *now },
		},
	}, zaptest.NewLogger(t))
}

func TestManager_CreateGetEnd(t *testing.T) {
	// Arrange
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	gauge := &gaugeRecorder{}
	m := newManager(t, &now, gauge)

	// Act
	sess := m.Create()
	got, err := m.Get(sess.ID)

	// Assert
	require.NoError(t, err)
	assert.Same(t, sess, got)
	assert.Equal(t, sess.ID, got.Store.ID())
	assert.Equal(t, 1, gauge.last())

	assert.True(t, m.End(sess.ID))
	assert.False(t, m.End(sess.ID))
	_, err = m.Get(sess.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.Equal(t, 0, gauge.last())
}

func TestManager_SweepEvictsIdleSessions(t *testing.T) {
	// Arrange
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	gauge := &gaugeRecorder{}
	m := newManager(t, &now, gauge)
	idle := m.Create()
	active := m.Create()

	// Act
	now = now.Add(20 * time.Minute)
	_, err := m.Get(active.ID)
	require.NoError(t, err)
	now = now.Add(15 * time.Minute)
	evicted := m.Sweep()

	// Assert
	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, m.Count())
	_, err = m.Get(idle.ID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	_, err = m.Get(active.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1, gauge.last())
}

func TestManager_ReleasesStreamsOfEndedSessions(t *testing.T) {
	// Arrange
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	publisher := &closingPublisher{}
	m := session.NewManager(testutils.NewMockAIGateway(), publisher, nil, session.ManagerConfig{
		IdleTTL: 30 * time.Minute,
		Store:   session.StoreConfig{Now: func() time.Time { return now }},
	}, zaptest.NewLogger(t))
	ended := m.Create()
	idle := m.Create()
	kept := m.Create()

	// Act
	m.End(ended.ID)
	now = now.Add(20 * time.Minute)
	_, err := m.Get(kept.ID)
	require.NoError(t, err)
	now = now.Add(15 * time.Minute)
	m.Sweep()

	// Assert
	assert.ElementsMatch(t, []string{ended.ID, idle.ID}, publisher.Closed())
}

func TestManager_StopWaitsForBackgroundWork(t *testing.T) {
	// Arrange
	now := time.Now()
	m := newManager(t, &now, nil)
	require.NoError(t, m.Start(context.Background()))

	requestCtx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	release := make(chan struct{})
	m.Go(requestCtx, func(ctx context.Context) {
		<-release
		// the request context is gone but the work context is not
		assert.NoError(t, ctx.Err())
		close(finished)
	})
	cancel()

	// Act
	stopped := make(chan error, 1)
	go func() { stopped <- m.Stop(context.Background()) }()
	close(release)

	// Assert
	require.NoError(t, <-stopped)
	select {
	case <-finished:
	default:
		t.Fatal("Stop returned before background work finished")
	}
}

func TestManager_StopHonorsDeadline(t *testing.T) {
	// Arrange
	now := time.Now()
	m := newManager(t, &now, nil)
	block := make(chan struct{})
	defer close(block)
	m.Go(context.Background(), func(context.Context) { <-block })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// Act
	err := m.Stop(ctx)

	// Assert
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
