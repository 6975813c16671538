package hxbind

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Loop is a running render loop. Stop it to release its goroutine.
type Loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Start runs Tick every render interval until ctx is done or the returned
// Loop is stopped.
func (reg *Registry) Start(ctx context.Context) *Loop {
	ctx, cancel := context.WithCancel(ctx)
	l := &Loop{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(l.done)
		ticker := time.NewTicker(reg.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reg.Tick(ctx)
			}
		}
	}()

	reg.log.Debug("render loop started", zap.Duration("interval", reg.interval))
	return l
}

// Stop cancels the loop and waits for an in-flight tick to finish.
func (l *Loop) Stop() {
	l.cancel()
	<-l.done
}

// Done is closed once the loop has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Tick runs one pass of the render loop: components whose refresh
// interval has elapsed are refreshed, then every dirty component is
// rendered, in registration order. Failures are logged and the component is
// retried on the next tick. Tick returns the number of components rendered.
//
// Refreshers are called between two turns, so DOM events are dispatched
// while a fetch is in flight.
func (reg *Registry) Tick(ctx context.Context) int {
	due := reg.dueRefreshes()
	for i := range due {
		due[i].data, due[i].err = due[i].refresher.Refresh(ctx, due[i].component.id, nil)
	}

	reg.turn.Lock()
	defer reg.turn.Unlock()

	rendered := 0
	for _, f := range due {
		c := f.component
		changed, err := c.applyRefresh(ctx, nil, f.data, f.err)
		if err != nil {
			reg.log.Warn("refresh failed", zap.String("component", c.id), zap.Error(err))
		}
		if changed && c.clean {
			rendered++
		}
	}
	for _, c := range reg.Components() {
		if c.clean {
			continue
		}
		if err := c.Render(ctx); err != nil {
			reg.log.Warn("render failed", zap.String("component", c.id), zap.Error(err))
			continue
		}
		if c.clean {
			rendered++
		}
	}
	return rendered
}

type fetch struct {
	component *Component
	refresher Refresher
	data      map[string]any
	err       error
}

// dueRefreshes starts, as one turn, the refresh of every component whose
// interval has elapsed.
func (reg *Registry) dueRefreshes() []fetch {
	reg.turn.Lock()
	defer reg.turn.Unlock()

	now := reg.now()
	var due []fetch
	for _, c := range reg.Components() {
		if !c.refreshDue(now) {
			continue
		}
		if r, ok := c.beginRefresh(nil); ok {
			due = append(due, fetch{component: c, refresher: r})
		}
	}
	return due
}
