package orderwatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pickmart/pickmart-go/internal/apperrors"
	"github.com/pickmart/pickmart-go/internal/logger"
	"github.com/pickmart/pickmart-go/internal/models"
)

// scriptedGetter replays a fixed sequence of statuses, one per poll, and
// keeps answering the last one once the script runs out.
type scriptedGetter struct {
	mu       sync.Mutex
	statuses []string
	err      error
	calls    int
}

func (g *scriptedGetter) Get(_ context.Context, id uuid.UUID) (models.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return models.Order{}, g.err
	}

	idx := g.calls
	if idx >= len(g.statuses) {
		idx = len(g.statuses) - 1
	}
	g.calls++

	return models.Order{ID: id, Number: "PM-1042", Status: g.statuses[idx]}, nil
}

func collect(t *testing.T, ch <-chan models.Order) []string {
	t.Helper()

	var statuses []string
	for {
		select {
		case order, ok := <-ch:
			if !ok {
				return statuses
			}
			statuses = append(statuses, order.Status)
		case <-time.After(5 * time.Second):
			t.Fatal("watch channel did not settle in time")
		}
	}
}

func Test_Watcher_EmitsEveryStatusChange(t *testing.T) {
	t.Parallel()

	getter := &scriptedGetter{statuses: []string{
		models.OrderStatusNew,
		models.OrderStatusNew, // repeated polls of the same status stay silent
		models.OrderStatusAccepted,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
	}}

	w := NewWithInterval(getter, logger.NewNoOpLogger(), time.Millisecond)
	statuses := collect(t, w.Watch(t.Context(), uuid.New()))

	require.Equal(t, []string{
		models.OrderStatusNew,
		models.OrderStatusAccepted,
		models.OrderStatusPreparing,
		models.OrderStatusReady,
	}, statuses)
}

func Test_Watcher_StopsAtTerminalStatus(t *testing.T) {
	t.Parallel()

	tests := []string{
		models.OrderStatusReady,
		models.OrderStatusCompleted,
		models.OrderStatusCanceled,
	}

	for _, terminal := range tests {
		t.Run(terminal, func(t *testing.T) {
			getter := &scriptedGetter{statuses: []string{models.OrderStatusNew, terminal}}

			w := NewWithInterval(getter, logger.NewNoOpLogger(), time.Millisecond)
			statuses := collect(t, w.Watch(t.Context(), uuid.New()))

			require.Equal(t, []string{models.OrderStatusNew, terminal}, statuses)
		})
	}
}

func Test_Watcher_StopsOnFatalErrors(t *testing.T) {
	t.Parallel()

	t.Run("order not found", func(t *testing.T) {
		getter := &scriptedGetter{err: apperrors.ErrOrderNotFound}

		w := NewWithInterval(getter, logger.NewNoOpLogger(), time.Millisecond)
		statuses := collect(t, w.Watch(t.Context(), uuid.New()))

		require.Empty(t, statuses)
	})

	t.Run("session expired", func(t *testing.T) {
		getter := &scriptedGetter{err: apperrors.ErrSessionExpired}

		w := NewWithInterval(getter, logger.NewNoOpLogger(), time.Millisecond)
		statuses := collect(t, w.Watch(t.Context(), uuid.New()))

		require.Empty(t, statuses)
	})
}

func Test_Watcher_KeepsPollingThroughTransientErrors(t *testing.T) {
	t.Parallel()

	// First poll fails with a transient error, then the script takes over
	getter := &scriptedGetter{statuses: []string{models.OrderStatusReady}}
	getter.err = context.DeadlineExceeded

	w := NewWithInterval(getter, logger.NewNoOpLogger(), time.Millisecond)
	ch := w.Watch(t.Context(), uuid.New())

	time.Sleep(10 * time.Millisecond)
	getter.mu.Lock()
	getter.err = nil
	getter.mu.Unlock()

	statuses := collect(t, ch)
	require.Equal(t, []string{models.OrderStatusReady}, statuses)
}

func Test_Watcher_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	getter := &scriptedGetter{statuses: []string{models.OrderStatusNew}}

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWithInterval(getter, logger.NewNoOpLogger(), time.Millisecond)
	ch := w.Watch(ctx, uuid.New())

	// Drain the first emission, then cancel
	select {
	case order := <-ch:
		require.Equal(t, models.OrderStatusNew, order.Status)
	case <-time.After(5 * time.Second):
		t.Fatal("expected the initial status")
	}
	cancel()

	statuses := collect(t, ch)
	require.Empty(t, statuses, "no further emissions after cancellation")
}
