package flight

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Group deduplicates calls by key. The zero value is ready to use.
type Group[T any] struct {
	sf    singleflight.Group
	mu    sync.Mutex
	calls map[string]*call
}

type call struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

// Do runs fn once for all concurrent callers of key and returns its result.
// shared reports whether the result was handed to more than one caller.
//
// fn receives a context that keeps the values of the first caller but none of
// its cancellation. It is cancelled when the last waiting caller leaves. A
// caller whose ctx is done returns ctx.Err() immediately.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (v T, shared bool, err error) {
	c := g.join(ctx, key)
	defer g.leave(key, c)

	ch := g.sf.DoChan(key, func() (any, error) {
		return fn(c.ctx)
	})

	select {
	case <-ctx.Done():
		return v, false, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return v, r.Shared, r.Err
		}
		v, _ = r.Val.(T)
		return v, r.Shared, nil
	}
}

func (g *Group[T]) join(ctx context.Context, key string) *call {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.calls == nil {
		g.calls = make(map[string]*call)
	}
	c, ok := g.calls[key]
	if !ok {
		detached, cancel := context.WithCancel(context.WithoutCancel(ctx))
		c = &call{ctx: detached, cancel: cancel}
		g.calls[key] = c
	}
	c.waiters++
	return c
}

func (g *Group[T]) leave(key string, c *call) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c.waiters--
	if c.waiters > 0 {
		return
	}
	c.cancel()
	if g.calls[key] == c {
		delete(g.calls, key)
	}
}
