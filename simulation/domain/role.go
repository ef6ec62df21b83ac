package domain

import (
	"fmt"
	"log/slog"
)

// Role bundles one receiver with the policies of one responsibility area of an actor.
type Role struct {
	name     string
	receiver MessageReceiver
	registry *PolicyRegistry

	actor    *Actor
	ref      RoleRef
	observer DispatchObserver
	logger   *slog.Logger
}

func NewRole(name string, receiver MessageReceiver) *Role {
	if receiver == nil {
		receiver = NewDirectReceiver()
	}
	return &Role{
		name:     name,
		receiver: receiver,
		registry: NewPolicyRegistry(),
		observer: nopObserver{},
		logger:   slog.Default(),
	}
}

func (r *Role) attach(actor *Actor) {
	r.actor = actor
	r.ref = RoleRef{Actor: actor.GetId(), Role: r.name}
	r.observer = actor.run.Observer
	r.logger = actor.run.Logger.With("actor", actor.GetId(), "role", r.name)
	r.receiver.bind(r.ref, actor.run)
}

func (r *Role) Name() string {
	return r.name
}

func (r *Role) Ref() RoleRef {
	return r.ref
}

func (r *Role) Actor() *Actor {
	return r.actor
}

func (r *Role) Receiver() MessageReceiver {
	return r.receiver
}

// Register adds a policy. Types already handled by this role or by another role
// of the same actor are rejected.
func (r *Role) Register(messageType MessageType, policy MessagePolicy) error {
	if r.actor != nil {
		if owner, ok := r.actor.roleFor(messageType); ok && owner != r {
			return fmt.Errorf("type '%v' already handled by role '%v' of actor %v: %w",
				messageType, owner.name, r.actor.GetId(), ErrDuplicatePolicy)
		}
	}
	return r.registry.Register(messageType, policy)
}

func (r *Role) Replace(messageType MessageType, policy MessagePolicy) error {
	return r.registry.Replace(messageType, policy)
}

func (r *Role) Handles(messageType MessageType) bool {
	return r.registry.Handles(messageType)
}

func (r *Role) Types() []MessageType {
	return r.registry.Types()
}

// Receive resolves the policy for the message type and hands both to the receiver.
// A message without policy is reported Unhandled and left to the caller.
func (r *Role) Receive(message *Message) (DispatchResult, error) {
	policy, ok := r.registry.Lookup(message.Type)
	if !ok {
		result := DispatchResult{Outcome: Unhandled}
		r.observer.MessageDispatched(r.ref, message, result)
		r.logger.Warn("no policy for message type", "type", message.Type, "sender", message.Sender)
		return result, nil
	}
	return r.receiver.Receive(message, policy)
}

// Wake re-arms a delayed receiver parked on a deferred message.
func (r *Role) Wake() error {
	if delayed, ok := r.receiver.(*Delayed); ok {
		return delayed.Wake()
	}
	return nil
}

func (r *Role) RemoveMessage(id uint64) bool {
	if delayed, ok := r.receiver.(*Delayed); ok {
		return delayed.Remove(id)
	}
	return false
}
