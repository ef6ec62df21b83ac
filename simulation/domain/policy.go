package domain

import (
	"fmt"

	"golang.org/x/exp/maps"
)

// MessagePolicy is the business logic for one message type of one role. Handle
// reports false to defer the message.
type MessagePolicy interface {
	Handle(message *Message) bool
}

type PolicyFunc func(message *Message) bool

func (f PolicyFunc) Handle(message *Message) bool {
	return f(message)
}

type Outcome int

const (
	// Unhandled means no policy exists for the message type; the message is not consumed.
	Unhandled Outcome = iota
	// Handled means a policy ran; Success carries its verdict.
	Handled
	// Queued means the receiver accepted the message for later dispatch.
	Queued
)

func (o Outcome) String() string {
	switch o {
	case Unhandled:
		return "unhandled"
	case Handled:
		return "handled"
	case Queued:
		return "queued"
	default:
		return "unknown"
	}
}

type DispatchResult struct {
	Outcome Outcome
	Success bool
}

func (r DispatchResult) String() string {
	if r.Outcome == Handled {
		return fmt.Sprintf("handled(%v)", r.Success)
	}
	return r.Outcome.String()
}

// PolicyRegistry maps message types to exactly one policy.
type PolicyRegistry struct {
	policies map[MessageType]MessagePolicy
}

func NewPolicyRegistry() *PolicyRegistry {
	return &PolicyRegistry{policies: make(map[MessageType]MessagePolicy)}
}

func (r *PolicyRegistry) Register(messageType MessageType, policy MessagePolicy) error {
	if _, ok := r.policies[messageType]; ok {
		return fmt.Errorf("type '%v': %w", messageType, ErrDuplicatePolicy)
	}
	r.policies[messageType] = policy
	return nil
}

// Replace swaps the policy of an already registered type.
func (r *PolicyRegistry) Replace(messageType MessageType, policy MessagePolicy) error {
	if _, ok := r.policies[messageType]; !ok {
		return fmt.Errorf("type '%v': %w", messageType, ErrMissingPolicy)
	}
	r.policies[messageType] = policy
	return nil
}

func (r *PolicyRegistry) Lookup(messageType MessageType) (MessagePolicy, bool) {
	policy, ok := r.policies[messageType]
	return policy, ok
}

func (r *PolicyRegistry) Handles(messageType MessageType) bool {
	_, ok := r.policies[messageType]
	return ok
}

func (r *PolicyRegistry) Types() []MessageType {
	return maps.Keys(r.policies)
}

func (r *PolicyRegistry) Dispatch(message *Message) DispatchResult {
	policy, ok := r.policies[message.Type]
	if !ok {
		return DispatchResult{Outcome: Unhandled}
	}
	return DispatchResult{Outcome: Handled, Success: policy.Handle(message)}
}

type Registrar interface {
	Register(messageType MessageType, policy MessagePolicy) error
}

// RegisterPolicy registers a typed policy keyed by the exact payload type C. A
// message whose payload is not a C is refused.
func RegisterPolicy[C Content](r Registrar, handle func(message *Message, content C) bool) error {
	return r.Register(TypeFor[C](), PolicyFunc(func(message *Message) bool {
		content, ok := message.Payload.(C)
		if !ok {
			return false
		}
		return handle(message, content)
	}))
}
