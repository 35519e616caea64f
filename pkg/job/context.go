package job

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// HookTimeout bounds how long shutdown waits for registered hooks.
const HookTimeout = 10 * time.Second

// NewContext creates a job Context cancelled by Shutdown.
func NewContext(parent context.Context) *Context {
	ctx, cancel := context.WithCancel(parent)
	return &Context{
		Ctx:    ctx,
		cancel: cancel,
	}
}

// Shutdown runs all registered hooks and cancels the context. It is
// idempotent: hooks run exactly once no matter how many termination paths
// race into it.
func (c *Context) Shutdown(reason string) {
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		return
	}
	c.shutdown = true
	hooks := c.hooks
	c.mu.Unlock()

	slog.Info("Job shutdown initiated", slog.String("reason", reason))

	var wg sync.WaitGroup
	for _, hook := range hooks {
		wg.Add(1)
		go func(h func(string)) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Shutdown hook panicked", slog.Any("panic", r))
				}
			}()
			h(reason)
		}(hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(HookTimeout):
		slog.Warn("Shutdown hooks timed out", slog.Duration("timeout", HookTimeout))
	}

	c.cancel()
}

// OnShutdown registers a hook to run when the job shuts down. If the job has
// already shut down the hook runs immediately.
func (c *Context) OnShutdown(hook func(reason string)) {
	c.mu.Lock()
	if c.shutdown {
		c.mu.Unlock()
		go func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Shutdown hook panicked", slog.Any("panic", r))
				}
			}()
			hook("job already shut down")
		}()
		return
	}
	c.hooks = append(c.hooks, hook)
	c.mu.Unlock()
}

// IsShutdown reports whether the job has been shut down.
func (c *Context) IsShutdown() bool {
	select {
	case <-c.Ctx.Done():
		return true
	default:
		return false
	}
}

// Done exposes the cancellation channel of the job context.
func (c *Context) Done() <-chan struct{} {
	return c.Ctx.Done()
}

// Err returns the context cancellation error.
func (c *Context) Err() error {
	return c.Ctx.Err()
}
