package idler

import (
	"context"
	"log"
	"sync/atomic"
)

// DefaultEventBuffer is the queue size used by the binary.
const DefaultEventBuffer = 64

// EventQueue hands runner events to a consumer that may be slow, such as
// a tea.Program. Push never blocks; events that do not fit are dropped.
type EventQueue struct {
	ch      chan Event
	dropped atomic.Int64
}

// NewEventQueue returns a queue holding up to size pending events.
func NewEventQueue(size int) *EventQueue {
	if size <= 0 {
		size = DefaultEventBuffer
	}
	return &EventQueue{ch: make(chan Event, size)}
}

// Push enqueues ev. It is meant to be passed to OnEvent.
func (q *EventQueue) Push(ev Event) {
	select {
	case q.ch <- ev:
	default:
		if q.dropped.Add(1) == 1 {
			log.Printf("events: queue full, dropping %s events", ev.Kind)
		}
	}
}

// Dropped returns how many events did not fit.
func (q *EventQueue) Dropped() int64 {
	return q.dropped.Load()
}

// Run delivers queued events to send, in order, until ctx is done.
func (q *EventQueue) Run(ctx context.Context, send func(Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-q.ch:
			send(ev)
		}
	}
}
