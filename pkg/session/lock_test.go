package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aretw0/botflow/internal/runtime"
	"github.com/aretw0/botflow/pkg/domain"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager()
	ctx := context.Background()
	count := 10000
	graph := &domain.FlowGraph{ID: "g"}

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_ = mgr.Add(ctx, runtime.NewSession(sid, graph))
		_ = mgr.WithLock(ctx, sid, func(context.Context, *runtime.Session) error { return nil })
		_ = mgr.Delete(ctx, sid)
	}

	lockCount := len(mgr.locks)
	t.Logf("Sessions Created: %d, Locks Leaked: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Delete", lockCount)
	}
	if len(mgr.sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(mgr.sessions))
	}
}
