package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/botflow/internal/runtime"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loopGraph() *domain.FlowGraph {
	return &domain.FlowGraph{
		ID: "loop",
		Blocks: []domain.Block{
			{ID: "A", Steps: []domain.Step{{ID: "a"}}},
		},
		Edges: []domain.Edge{{ID: "again", To: domain.Locator{BlockID: "A"}}},
	}
}

func TestManager_Locking(t *testing.T) {
	manager := session.NewManager()
	engine := runtime.NewEngine(nil)
	ctx := context.Background()
	id := "race-test"
	require.NoError(t, manager.Add(ctx, runtime.NewSession(id, loopGraph())))

	var wg sync.WaitGroup
	concurrentWrites := 20

	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithLock(ctx, id, func(ctx context.Context, sess *runtime.Session) error {
				_, err := engine.AdvanceEdge(ctx, sess, "again")
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := manager.Snapshot(ctx, id)
	require.NoError(t, err)
	assert.Len(t, snap.History, concurrentWrites, "no advance may be lost")
}

func TestManager_AddGetDelete(t *testing.T) {
	manager := session.NewManager()
	ctx := context.Background()

	require.NoError(t, manager.Add(ctx, runtime.NewSession("b", loopGraph())))
	require.NoError(t, manager.Add(ctx, runtime.NewSession("a", loopGraph())))
	assert.ErrorIs(t, manager.Add(ctx, runtime.NewSession("a", loopGraph())), session.ErrSessionExists)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, manager.Delete(ctx, "a"))
	_, err = manager.Snapshot(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, manager.Delete(ctx, "a"), domain.ErrSessionNotFound)
}

func TestManager_Prune(t *testing.T) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	manager := session.NewManager(session.WithClock(func() time.Time { return now }))
	engine := runtime.NewEngine(nil)
	ctx := context.Background()

	done := runtime.NewSession("done", loopGraph())
	_, err := engine.AdvanceEdge(ctx, done, "missing")
	require.NoError(t, err)
	require.True(t, done.Completed())

	require.NoError(t, manager.Add(ctx, done))
	require.NoError(t, manager.Add(ctx, runtime.NewSession("abandoned", loopGraph())))

	now = now.Add(30 * time.Minute)
	require.NoError(t, manager.Add(ctx, runtime.NewSession("live", loopGraph())))

	n, err := manager.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n, "recent sessions are kept")

	now = now.Add(time.Hour)
	n, err = manager.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "completed and abandoned sessions both go")

	ids, _ := manager.List(ctx)
	assert.Equal(t, []string{"live"}, ids)

	require.NoError(t, manager.WithLock(ctx, "live", func(context.Context, *runtime.Session) error { return nil }))
	now = now.Add(59 * time.Minute)
	n, err = manager.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n, "locking a session counts as activity")

	now = now.Add(2 * time.Minute)
	n, err = manager.Prune(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = manager.Snapshot(ctx, "live")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
