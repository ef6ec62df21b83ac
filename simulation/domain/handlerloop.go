package domain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/looplab/fsm"
)

const (
	StateIdle = "idle"
	StateBusy = "busy"

	eventArm     = "arm"
	eventRelease = "release"
)

// HandlerLoop drains a MessageQueue one message at a time. Each message waits a
// drawn delay before handle runs; at most one continuation is outstanding.
//
// A handle call reporting false leaves the message at the head and parks the
// loop in idle until Kick is called again. Nothing re-arms a parked loop on its
// own, so a queue whose head keeps failing starves until new input arrives.
type HandlerLoop struct {
	role      RoleRef
	queue     *MessageQueue
	scheduler Scheduler
	delay     DelayDistribution
	handle    func(message *Message) bool
	observer  DispatchObserver
	logger    *slog.Logger

	state       *fsm.FSM
	outstanding int
}

func NewHandlerLoop(role RoleRef, queue *MessageQueue, scheduler Scheduler, delay DelayDistribution, handle func(message *Message) bool, observer DispatchObserver, logger *slog.Logger) *HandlerLoop {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	loop := &HandlerLoop{
		role:      role,
		queue:     queue,
		scheduler: scheduler,
		delay:     delay,
		handle:    handle,
		observer:  observer,
		logger:    logger.With("actor", role.Actor, "role", role.Role),
	}
	loop.state = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventArm, Src: []string{StateIdle}, Dst: StateBusy},
			{Name: eventRelease, Src: []string{StateBusy}, Dst: StateIdle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				loop.logger.Debug("handler loop transition", "from", e.Src, "to", e.Dst)
			},
		},
	)
	return loop
}

func (l *HandlerLoop) State() string {
	return l.state.Current()
}

func (l *HandlerLoop) IsBusy() bool {
	return l.state.Is(StateBusy)
}

// Outstanding is the number of scheduled continuations that have not fired yet.
func (l *HandlerLoop) Outstanding() int {
	return l.outstanding
}

// Kick arms the loop when it is idle and there is work queued. It is a no-op
// while busy.
func (l *HandlerLoop) Kick() error {
	if l.IsBusy() || l.queue.IsEmpty() {
		return nil
	}
	if err := l.transition(eventArm); err != nil {
		return err
	}
	return l.scheduleNext()
}

func (l *HandlerLoop) scheduleNext() error {
	delay := l.delay.Draw()
	l.observer.DelayDrawn(l.role, delay)

	l.outstanding++
	err := l.scheduler.ScheduleAfter(delay, l.dispatchOne)
	if err != nil {
		l.outstanding--
		l.observer.SchedulingFailed(l.role, err)
		l.logger.Warn("could not schedule message handling, loop parked",
			"delay", delay, "queued", l.queue.Size(), "error", err)
		if releaseErr := l.transition(eventRelease); releaseErr != nil {
			return releaseErr
		}
		return fmt.Errorf("%v: %w: %w", l.role, ErrSchedulingFailed, err)
	}
	return nil
}

func (l *HandlerLoop) dispatchOne() {
	l.outstanding--

	head, ok := l.queue.PeekMin()
	if !ok {
		l.logger.Debug("continuation fired on an empty queue")
		l.release()
		return
	}

	if !l.handle(head) {
		l.logger.Debug("message deferred, loop parked", "message", head.Id, "type", head.Type)
		l.release()
		return
	}

	l.queue.Remove(head.Id)
	if l.queue.IsEmpty() {
		l.release()
		return
	}

	// a scheduling failure here has already parked the loop and been logged
	_ = l.scheduleNext()
}

func (l *HandlerLoop) release() {
	if err := l.transition(eventRelease); err != nil {
		l.logger.Error("could not release handler loop", "error", err)
	}
}

func (l *HandlerLoop) transition(event string) error {
	return l.state.Event(context.Background(), event)
}
