package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/notexe/remind/internal/reminder"
)

// Plugin receives reminder lifecycle events from the scheduler.
type Plugin interface {
	Name() string
	OnDue(ctx context.Context, r reminder.Reminder) error
	OnDone(ctx context.Context, id int64) error
}

// Registry fans events out to every registered plugin. A failing,
// panicking or hanging plugin is logged and does not stop the others.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	order   []string
	timeout time.Duration
}

func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register adds p, replacing any plugin with the same name.
func (r *Registry) Register(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.plugins[name]; !exists {
		r.order = append(r.order, name)
	}
	r.plugins[name] = p
}

// SetTimeout bounds each plugin call. Zero leaves calls bounded only by
// the caller's context.
func (r *Registry) SetTimeout(d time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeout = d
}

func (r *Registry) Get(name string) (Plugin, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

func (r *Registry) NotifyDue(ctx context.Context, rem reminder.Reminder) {
	for _, p := range r.snapshot() {
		r.call(ctx, p.Name(), "OnDue", func(ctx context.Context) error { return p.OnDue(ctx, rem) })
	}
}

func (r *Registry) NotifyDone(ctx context.Context, id int64) {
	for _, p := range r.snapshot() {
		r.call(ctx, p.Name(), "OnDone", func(ctx context.Context) error { return p.OnDone(ctx, id) })
	}
}

func (r *Registry) snapshot() []Plugin {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Plugin, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.plugins[name])
	}
	return out
}

// call runs fn on its own goroutine and stops waiting once the per-call
// timeout or ctx expires. A plugin that ignores its context is abandoned.
func (r *Registry) call(ctx context.Context, name, event string, fn func(context.Context) error) {
	r.mu.RLock()
	timeout := r.timeout
	r.mu.RUnlock()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- fmt.Errorf("panicked: %v", rec)
			}
		}()
		done <- fn(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Printf("[plugins] Error: %s %s: %v", name, event, err)
		}
	case <-ctx.Done():
		log.Printf("[plugins] Error: %s %s gave up: %v", name, event, ctx.Err())
	}
}
