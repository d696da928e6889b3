package telegram

import (
	"context"
	"sync"

	"dosug/internal/dialogue"
)

// dispatcher runs events of one conversation strictly in arrival order while
// different conversations are handled concurrently. A drain goroutine exists
// per key only while that key has pending events.
type dispatcher struct {
	handle func(ctx context.Context, ev dialogue.Event)

	mu      sync.Mutex
	pending map[dialogue.Key][]dialogue.Event
	wg      sync.WaitGroup
}

func newDispatcher(handle func(ctx context.Context, ev dialogue.Event)) *dispatcher {
	return &dispatcher{
		handle:  handle,
		pending: make(map[dialogue.Key][]dialogue.Event),
	}
}

func (d *dispatcher) dispatch(ctx context.Context, ev dialogue.Event) {
	d.mu.Lock()
	queue, running := d.pending[ev.Key]
	d.pending[ev.Key] = append(queue, ev)
	if running {
		d.mu.Unlock()
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go d.drain(ctx, ev.Key)
}

func (d *dispatcher) drain(ctx context.Context, key dialogue.Key) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		queue := d.pending[key]
		if len(queue) == 0 {
			delete(d.pending, key)
			d.mu.Unlock()
			return
		}
		ev := queue[0]
		d.pending[key] = queue[1:]
		d.mu.Unlock()

		d.handle(ctx, ev)
	}
}

// wait blocks until every queued event has been handled.
func (d *dispatcher) wait() {
	d.wg.Wait()
}
