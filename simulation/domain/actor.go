package domain

import (
	"fmt"
	"log/slog"
	"time"
)

// Actor is a simulated decision maker. It owns its roles and its content store;
// inbound messages are routed to the single role that handles their type.
type Actor struct {
	id  ActorRef
	run *RunContext

	roles        []*Role
	rolesByName  map[string]*Role
	contentStore *ContentStore
	logger       *slog.Logger
}

func NewActor(id ActorRef, run *RunContext) (*Actor, error) {
	actor := &Actor{
		id:          id,
		run:         run,
		rolesByName: make(map[string]*Role),
		logger:      run.Logger.With("actor", id),
	}
	actor.contentStore = NewContentStore(id, run.Sink, run.Logger)

	if err := run.Directory.Register(actor); err != nil {
		return nil, err
	}
	return actor, nil
}

func (a *Actor) GetId() ActorRef {
	return a.id
}

func (a *Actor) Run() *RunContext {
	return a.run
}

func (a *Actor) Now() time.Duration {
	return a.run.Scheduler.Now()
}

func (a *Actor) ContentStore() *ContentStore {
	return a.contentStore
}

func (a *Actor) Logger() *slog.Logger {
	return a.logger
}

func (a *Actor) AddRole(role *Role) error {
	if _, ok := a.rolesByName[role.Name()]; ok {
		return fmt.Errorf("role '%v' of actor '%v': %w", role.Name(), a.id, ErrDuplicateRole)
	}
	for _, messageType := range role.Types() {
		if owner, ok := a.roleFor(messageType); ok {
			return fmt.Errorf("type '%v' already handled by role '%v' of actor '%v': %w",
				messageType, owner.Name(), a.id, ErrDuplicatePolicy)
		}
	}

	role.attach(a)
	a.roles = append(a.roles, role)
	a.rolesByName[role.Name()] = role
	return nil
}

func (a *Actor) Role(name string) (*Role, error) {
	role, ok := a.rolesByName[name]
	if !ok {
		return nil, fmt.Errorf("role '%v' of actor '%v': %w", name, a.id, ErrMissingRole)
	}
	return role, nil
}

func (a *Actor) Roles() []*Role {
	return append([]*Role(nil), a.roles...)
}

func (a *Actor) roleFor(messageType MessageType) (*Role, bool) {
	for _, role := range a.roles {
		if role.Handles(messageType) {
			return role, true
		}
	}
	return nil, false
}

// Deliver records the payload as received and routes the message to its role.
func (a *Actor) Deliver(message *Message) (DispatchResult, error) {
	a.record(message.Payload, false)

	role, ok := a.roleFor(message.Type)
	if !ok {
		a.logger.Warn("no role handles message type", "type", message.Type, "sender", message.Sender)
		return DispatchResult{Outcome: Unhandled}, nil
	}
	return role.Receive(message)
}

// Send delivers the content to the receiver at the current simulated time.
func (a *Actor) Send(content Content, receiver ActorRef, priority int32) (DispatchResult, error) {
	target, ok := a.run.Directory.Lookup(receiver)
	if !ok {
		return DispatchResult{Outcome: Unhandled}, fmt.Errorf("receiver '%v': %w", receiver, ErrUnknownActor)
	}

	message := NewMessage(a.id, receiver, a.Now(), priority, content)
	a.record(content, true)
	return target.Deliver(message)
}

// SendAfter delivers the content once the transmission delay has elapsed.
func (a *Actor) SendAfter(content Content, receiver ActorRef, priority int32, delay time.Duration) error {
	target, ok := a.run.Directory.Lookup(receiver)
	if !ok {
		return fmt.Errorf("receiver '%v': %w", receiver, ErrUnknownActor)
	}

	message := NewMessage(a.id, receiver, a.Now(), priority, content)
	err := a.run.Scheduler.ScheduleAfter(delay, func() {
		if _, deliveryErr := target.Deliver(message); deliveryErr != nil {
			a.logger.Warn("delayed delivery failed", "receiver", receiver, "type", message.Type, "error", deliveryErr)
		}
	})
	if err != nil {
		return fmt.Errorf("sending to '%v': %w: %w", receiver, ErrSchedulingFailed, err)
	}

	a.record(content, true)
	return nil
}

// Schedule runs the callback after the delay on the run's scheduler.
func (a *Actor) Schedule(delay time.Duration, callback func()) error {
	return a.run.Scheduler.ScheduleAfter(delay, callback)
}

func (a *Actor) record(content Content, sent bool) {
	if content == nil || content.GetDemandId() == "" {
		return
	}
	if err := a.contentStore.AddContent(content, sent); err != nil {
		a.logger.Warn("could not record content", "type", TypeOf(content), "error", err)
	}
}
