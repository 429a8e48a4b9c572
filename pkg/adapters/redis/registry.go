package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/aretw0/botflow/internal/compiler"
	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Registry is a shared flow catalogue stored in Redis.
// It implements ports.FlowLoader and ports.Watchable; Publish and Remove are
// the write side used by operators to roll out flow changes to every instance.
//
// Layout, under the configured prefix:
//
//	flow:<id>  raw flow document
//	flows      set of published flow IDs
//	events     pub/sub channel carrying the ID of each changed flow
type Registry struct {
	client  backend.UniversalClient
	prefix  string
	lockTTL time.Duration
	locker  *Locker
	logger  *slog.Logger
}

// Option configures the Registry.
type Option func(*Registry)

// WithPrefix sets the key prefix (default "botflow:").
func WithPrefix(prefix string) Option {
	return func(r *Registry) {
		r.prefix = prefix
	}
}

// WithLockTTL bounds how long a writer may hold a flow lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(r *Registry) {
		if ttl > 0 {
			r.lockTTL = ttl
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New connects to addr and returns a registry.
func New(addr string, opts ...Option) *Registry {
	return NewFromClient(backend.NewClient(&backend.Options{Addr: addr}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *Registry {
	r := &Registry{
		client:  client,
		prefix:  "botflow:",
		lockTTL: 5 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.locker = NewLocker(client, r.prefix)
	return r
}

func (r *Registry) flowKey(id string) string { return r.prefix + "flow:" + id }
func (r *Registry) indexKey() string         { return r.prefix + "flows" }
func (r *Registry) channel() string          { return r.prefix + "events" }

// Ping checks connectivity.
func (r *Registry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *Registry) Close() error {
	return r.client.Close()
}

// Publish validates raw and stores it as flow id, then notifies watchers.
// Documents that fail to compile are rejected before anything is written.
func (r *Registry) Publish(ctx context.Context, id string, raw []byte) error {
	g, err := compiler.CompileBytes(raw, id)
	if err != nil {
		return err
	}
	if g.ID != id {
		return fmt.Errorf("%w: document declares id %q, published as %q", domain.ErrInvalidGraph, g.ID, id)
	}

	return r.write(ctx, id, func(pipe backend.Pipeliner) {
		pipe.Set(ctx, r.flowKey(id), raw, 0)
		pipe.SAdd(ctx, r.indexKey(), id)
	})
}

// Remove deletes a flow. Removing an unknown flow returns ErrFlowNotFound.
func (r *Registry) Remove(ctx context.Context, id string) error {
	n, err := r.client.Exists(ctx, r.flowKey(id)).Result()
	if err != nil {
		return fmt.Errorf("redis exists failed: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrFlowNotFound, id)
	}

	return r.write(ctx, id, func(pipe backend.Pipeliner) {
		pipe.Del(ctx, r.flowKey(id))
		pipe.SRem(ctx, r.indexKey(), id)
	})
}

func (r *Registry) write(ctx context.Context, id string, fn func(backend.Pipeliner)) error {
	unlock, err := r.locker.Lock(ctx, id, r.lockTTL)
	if err != nil {
		return err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			r.logger.Warn("failed to release flow lock", "flow_id", id, "err", err)
		}
	}()

	if _, err := r.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		fn(pipe)
		return nil
	}); err != nil {
		return fmt.Errorf("redis write failed for %s: %w", id, err)
	}

	if err := r.client.Publish(ctx, r.channel(), id).Err(); err != nil {
		r.logger.Warn("failed to notify flow change", "flow_id", id, "err", err)
	}
	r.logger.Debug("flow registry updated", "flow_id", id)
	return nil
}

// GetFlow loads and compiles a published flow.
func (r *Registry) GetFlow(ctx context.Context, id string) (*domain.FlowGraph, error) {
	raw, err := r.client.Get(ctx, r.flowKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, fmt.Errorf("%w: %s", domain.ErrFlowNotFound, id)
		}
		return nil, fmt.Errorf("redis get failed for %s: %w", id, err)
	}
	return compiler.CompileBytes(raw, id)
}

// ListFlows returns the published flow IDs in sorted order.
func (r *Registry) ListFlows(ctx context.Context) ([]string, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list failed: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

// Watch emits the ID of every flow published or removed after the call returns.
func (r *Registry) Watch(ctx context.Context) (<-chan string, error) {
	sub := r.client.Subscribe(ctx, r.channel())
	// Wait for the subscription to be confirmed so no event is lost.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to flow events: %w", err)
	}

	ch := make(chan string, 1)
	go func() {
		defer close(ch)
		defer sub.Close()
		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case ch <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return ch, nil
}
