package infrastructure

import (
	"container/heap"
	"context"
	"fmt"
	"time"

	"bizsim/simulation/domain"
)

type scheduledEvent struct {
	time         time.Duration
	seq          uint64
	continuation func()
}

type eventHeap []*scheduledEvent

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(*scheduledEvent)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// EventScheduler is a single-threaded discrete-event engine. Events due at the
// same simulated time fire in the order they were scheduled.
type EventScheduler struct {
	now    time.Duration
	seq    uint64
	events eventHeap
	fired  int
}

func NewEventScheduler() *EventScheduler {
	return &EventScheduler{}
}

func (s *EventScheduler) Now() time.Duration {
	return s.now
}

func (s *EventScheduler) ScheduleAfter(delay time.Duration, continuation func()) error {
	if delay < 0 {
		return fmt.Errorf("delay %v: %w", delay, domain.ErrInvalidDelay)
	}
	if continuation == nil {
		return domain.ErrNilContinuation
	}
	s.seq++
	heap.Push(&s.events, &scheduledEvent{time: s.now + delay, seq: s.seq, continuation: continuation})
	return nil
}

func (s *EventScheduler) Pending() int {
	return len(s.events)
}

func (s *EventScheduler) Fired() int {
	return s.fired
}

// Step fires the next event. It returns false when nothing is scheduled.
func (s *EventScheduler) Step() bool {
	if len(s.events) == 0 {
		return false
	}
	event := heap.Pop(&s.events).(*scheduledEvent)
	s.now = event.time
	s.fired++
	event.continuation()
	return true
}

// RunUntil fires events up to and including the horizon, then moves the clock
// to the horizon. It stops early when the context is cancelled.
func (s *EventScheduler) RunUntil(ctx context.Context, horizon time.Duration) error {
	for len(s.events) > 0 && s.events[0].time <= horizon {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.Step()
	}
	if s.now < horizon {
		s.now = horizon
	}
	return nil
}
