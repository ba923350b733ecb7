package transport

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pickmart/pickmart-go/internal/apperrors"
	"github.com/pickmart/pickmart-go/internal/credentials"
	"github.com/pickmart/pickmart-go/internal/logger"
	"github.com/pickmart/pickmart-go/internal/models"
)

// gatedRefresh is a refresh function that blocks until released, so a test
// can deterministically queue waiters behind an in-flight cycle.
type gatedRefresh struct {
	gate  chan struct{}
	calls atomic.Int32
	pair  models.TokenPair
	err   error
}

func (g *gatedRefresh) fn(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	g.calls.Add(1)
	<-g.gate
	return g.pair, g.err
}

func newCoordinator(t *testing.T, g *gatedRefresh) (*coordinator, credentials.Store) {
	t.Helper()

	store := credentials.NewMemoryStore()
	require.NoError(t, store.Save(t.Context(), credentials.Credential{
		AccessToken:  "stale-access",
		RefreshToken: "refresh-0",
	}))

	c := &coordinator{
		store:    store,
		refresh:  g.fn,
		notifier: &notifier{logger: logger.NewNoOpLogger()},
		logger:   logger.NewNoOpLogger(),
	}
	return c, store
}

// waiterCount reads the queue length under the coordinator's own lock.
func waiterCount(c *coordinator) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

func Test_Coordinator_SharedOutcome(t *testing.T) {
	t.Parallel()

	g := &gatedRefresh{
		gate: make(chan struct{}),
		pair: models.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"},
	}
	c, store := newCoordinator(t, g)

	const queued = 4
	results := make(chan outcome, queued+1)
	var wg sync.WaitGroup

	// The winner starts the cycle and blocks on the gate
	wg.Add(1)
	go func() {
		defer wg.Done()
		access, err := c.awaitRefresh(context.Background())
		results <- outcome{access: access, err: err}
	}()

	require.Eventually(t, func() bool { return g.calls.Load() == 1 }, time.Second, time.Millisecond)

	// Everyone else arrives mid-flight and queues up
	for i := 0; i < queued; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			access, err := c.awaitRefresh(context.Background())
			results <- outcome{access: access, err: err}
		}()
	}
	require.Eventually(t, func() bool { return waiterCount(c) == queued }, time.Second, time.Millisecond)

	close(g.gate)
	wg.Wait()
	close(results)

	for o := range results {
		require.NoError(t, o.err)
		require.Equal(t, "access-1", o.access, "every caller shares the single cycle's token")
	}
	require.Equal(t, int32(1), g.calls.Load())

	cred, err := store.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, "access-1", cred.AccessToken)
	require.Equal(t, "refresh-1", cred.RefreshToken)

	// The coordinator is idle again: a later expiry starts a fresh cycle
	g.gate = make(chan struct{})
	close(g.gate)
	g.pair = models.TokenPair{AccessToken: "access-2", RefreshToken: "refresh-2"}

	access, err := c.awaitRefresh(t.Context())
	require.NoError(t, err)
	require.Equal(t, "access-2", access)
	require.Equal(t, int32(2), g.calls.Load())
}

func Test_Coordinator_FailureRejectsAllWaiters(t *testing.T) {
	t.Parallel()

	g := &gatedRefresh{
		gate: make(chan struct{}),
		err:  errors.New("refresh token revoked"),
	}
	c, store := newCoordinator(t, g)

	var notified atomic.Int32
	c.notifier.register(SessionListenerFunc(func(err error) {
		notified.Add(1)
	}))

	const queued = 4
	results := make(chan error, queued+1)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := c.awaitRefresh(context.Background())
		results <- err
	}()
	require.Eventually(t, func() bool { return g.calls.Load() == 1 }, time.Second, time.Millisecond)

	for i := 0; i < queued; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.awaitRefresh(context.Background())
			results <- err
		}()
	}
	require.Eventually(t, func() bool { return waiterCount(c) == queued }, time.Second, time.Millisecond)

	close(g.gate)
	wg.Wait()
	close(results)

	for err := range results {
		require.ErrorIs(t, err, apperrors.ErrSessionExpired)
	}
	require.Equal(t, int32(1), g.calls.Load())
	require.Equal(t, int32(1), notified.Load(), "one notification per cycle, not per waiter")

	_, err := store.Load(t.Context())
	require.ErrorIs(t, err, apperrors.ErrNoCredential)
}

func Test_Coordinator_SurvivesCallerCancellation(t *testing.T) {
	t.Parallel()

	g := &gatedRefresh{
		gate: make(chan struct{}),
		pair: models.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"},
	}
	close(g.gate)
	c, store := newCoordinator(t, g)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // already cancelled when the cycle starts

	access, err := c.awaitRefresh(ctx)
	require.NoError(t, err, "the cycle detaches from the caller's context")
	require.Equal(t, "access-1", access)

	cred, err := store.Load(t.Context())
	require.NoError(t, err)
	require.Equal(t, "access-1", cred.AccessToken)
}

func Test_Coordinator_NoCredentialFailsCycle(t *testing.T) {
	t.Parallel()

	g := &gatedRefresh{
		gate: make(chan struct{}),
		pair: models.TokenPair{AccessToken: "access-1", RefreshToken: "refresh-1"},
	}
	close(g.gate)

	c := &coordinator{
		store:    credentials.NewMemoryStore(),
		refresh:  g.fn,
		notifier: &notifier{logger: logger.NewNoOpLogger()},
		logger:   logger.NewNoOpLogger(),
	}

	var notified atomic.Int32
	c.notifier.register(SessionListenerFunc(func(error) {
		notified.Add(1)
	}))

	_, err := c.awaitRefresh(t.Context())
	require.ErrorIs(t, err, apperrors.ErrNoCredential)
	require.NotErrorIs(t, err, apperrors.ErrSessionExpired, "no session existed, so none expired")
	require.Equal(t, int32(0), g.calls.Load(), "no stored refresh token means no exchange attempt")
	require.Equal(t, int32(0), notified.Load(), "the listener only hears about sessions that actually ended")
}
