package domain

import (
	"errors"
	"fmt"
	"log/slog"
)

// MessageReceiver decides when a message and its resolved policy meet. The set
// of receivers is closed: Direct and Delayed.
type MessageReceiver interface {
	Receive(message *Message, policy MessagePolicy) (DispatchResult, error)
	bind(role RoleRef, run *RunContext)
}

// Direct runs the policy synchronously; messages never reside in a queue.
type Direct struct {
	role     RoleRef
	observer DispatchObserver
}

func NewDirectReceiver() *Direct {
	return &Direct{observer: nopObserver{}}
}

func (d *Direct) bind(role RoleRef, run *RunContext) {
	d.role = role
	d.observer = run.Observer
}

func (d *Direct) Receive(message *Message, policy MessagePolicy) (DispatchResult, error) {
	result := DispatchResult{Outcome: Handled, Success: policy.Handle(message)}
	d.observer.MessageDispatched(d.role, message, result)
	return result, nil
}

// Delayed queues every message and hands the queue head to its policy after a
// delay drawn from the distribution, one message at a time.
type Delayed struct {
	chain *OrderingChain
	delay DelayDistribution

	role     RoleRef
	queue    *MessageQueue
	loop     *HandlerLoop
	policies map[uint64]MessagePolicy
	observer DispatchObserver
	logger   *slog.Logger
}

func NewDelayedReceiver(chain *OrderingChain, delay DelayDistribution) *Delayed {
	if chain == nil {
		chain = Fifo()
	}
	return &Delayed{
		chain:    chain,
		delay:    delay,
		policies: make(map[uint64]MessagePolicy),
		observer: nopObserver{},
	}
}

func (d *Delayed) bind(role RoleRef, run *RunContext) {
	d.role = role
	d.observer = run.Observer
	d.logger = run.Logger.With("actor", role.Actor, "role", role.Role)
	d.queue = NewMessageQueue(d.chain.WithLogger(d.logger), run.Sequence)
	d.loop = NewHandlerLoop(role, d.queue, run.Scheduler, d.delay, d.handle, run.Observer, run.Logger)
}

func (d *Delayed) Receive(message *Message, policy MessagePolicy) (DispatchResult, error) {
	if d.queue == nil {
		return DispatchResult{Outcome: Unhandled}, errors.New("delayed receiver is not bound to a role")
	}

	id, err := d.queue.Enqueue(message)
	if err != nil {
		return DispatchResult{Outcome: Unhandled}, err
	}
	d.policies[id] = policy
	d.observer.MessageQueued(d.role, message, d.queue.Size())

	if err = d.loop.Kick(); err != nil {
		return DispatchResult{Outcome: Queued}, err
	}
	return DispatchResult{Outcome: Queued}, nil
}

// Wake re-arms a parked receiver so the queue head is retried.
func (d *Delayed) Wake() error {
	if d.loop == nil {
		return nil
	}
	return d.loop.Kick()
}

// Remove drops a queued message before its continuation fires.
func (d *Delayed) Remove(id uint64) bool {
	if d.queue == nil || !d.queue.Remove(id) {
		return false
	}
	delete(d.policies, id)
	return true
}

func (d *Delayed) handle(message *Message) bool {
	policy, ok := d.policies[message.Id]
	if !ok {
		d.logger.Warn("queued message lost its policy, dropping it", "message", message.Id, "type", message.Type)
		return true
	}

	result := DispatchResult{Outcome: Handled, Success: policy.Handle(message)}
	d.observer.MessageDispatched(d.role, message, result)
	if result.Success {
		delete(d.policies, message.Id)
	}
	return result.Success
}

func (d *Delayed) State() string {
	if d.loop == nil {
		return StateIdle
	}
	return d.loop.State()
}

func (d *Delayed) Outstanding() int {
	if d.loop == nil {
		return 0
	}
	return d.loop.Outstanding()
}

func (d *Delayed) Size() int {
	if d.queue == nil {
		return 0
	}
	return d.queue.Size()
}

// Pending returns the queued messages in dispatch order.
func (d *Delayed) Pending() []*Message {
	if d.queue == nil {
		return nil
	}
	return d.queue.ToSlice()
}

func (d *Delayed) String() string {
	return fmt.Sprintf("delayed(%v, %v queued, %v)", d.chain.Name(), d.Size(), d.State())
}
