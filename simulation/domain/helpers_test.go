package domain

import (
	"container/heap"
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

type pendingCall struct {
	at    time.Duration
	seq   int
	fn    func()
	index int
}

type callHeap []*pendingCall

func (h callHeap) Len() int { return len(h) }
func (h callHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h callHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *callHeap) Push(x any)   { *h = append(*h, x.(*pendingCall)) }
func (h *callHeap) Pop() any {
	old := *h
	item := old[len(old)-1]
	*h = old[:len(old)-1]
	return item
}

// manualScheduler fires continuations only when the test advances it.
type manualScheduler struct {
	now     time.Duration
	seq     int
	pending callHeap
	failing error
}

func (s *manualScheduler) Now() time.Duration {
	return s.now
}

func (s *manualScheduler) ScheduleAfter(delay time.Duration, continuation func()) error {
	if s.failing != nil {
		return s.failing
	}
	s.seq++
	heap.Push(&s.pending, &pendingCall{at: s.now + delay, seq: s.seq, fn: continuation})
	return nil
}

func (s *manualScheduler) step() bool {
	if len(s.pending) == 0 {
		return false
	}
	call := heap.Pop(&s.pending).(*pendingCall)
	s.now = call.at
	call.fn()
	return true
}

func (s *manualScheduler) drain() int {
	fired := 0
	for s.step() {
		fired++
	}
	return fired
}

var errSchedulerClosed = errors.New("scheduler closed")

type fixedDelay time.Duration

func (d fixedDelay) Draw() time.Duration {
	return time.Duration(d)
}

type order struct {
	ContentHeader
	Amount int
}

type invoice struct {
	ContentHeader
	Amount float64
}

type specialOrder struct {
	order
}

func newOrder(demandId DemandId, amount int) *order {
	return &order{ContentHeader: NewContentHeader(demandId), Amount: amount}
}

func newInvoice(demandId DemandId, amount float64) *invoice {
	return &invoice{ContentHeader: NewContentHeader(demandId), Amount: amount}
}

type recordingObserver struct {
	nopObserver
	queued     int
	dispatched []DispatchResult
	delays     []time.Duration
	failures   int
}

func (o *recordingObserver) MessageQueued(RoleRef, *Message, int) {
	o.queued++
}

func (o *recordingObserver) MessageDispatched(_ RoleRef, _ *Message, result DispatchResult) {
	o.dispatched = append(o.dispatched, result)
}

func (o *recordingObserver) DelayDrawn(_ RoleRef, delay time.Duration) {
	o.delays = append(o.delays, delay)
}

func (o *recordingObserver) SchedulingFailed(RoleRef, error) {
	o.failures++
}

type exportedChain struct {
	owner    ActorRef
	demandId DemandId
	records  []ContentRecord
}

type fakeSink struct {
	exported []exportedChain
	err      error
}

func (s *fakeSink) ExportChain(_ context.Context, owner ActorRef, demandId DemandId, records []ContentRecord) error {
	if s.err != nil {
		return s.err
	}
	s.exported = append(s.exported, exportedChain{owner: owner, demandId: demandId, records: records})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRun(scheduler Scheduler, observer DispatchObserver, sink ChainSink) *RunContext {
	return NewRunContext("test-run", scheduler, observer, sink, discardLogger())
}

func message(sender ActorRef, priority int32, payload Content) *Message {
	return NewMessage(sender, "receiver", 0, priority, payload)
}
