package domain

import (
	"context"
	"time"
)

// Scheduler is the discrete-event time-advance service. ScheduleAfter must invoke
// the continuation exactly once at Now()+delay; continuations due at the same
// instant run in scheduling order.
type Scheduler interface {
	Now() time.Duration
	ScheduleAfter(delay time.Duration, continuation func()) error
}

type DelayDistribution interface {
	Draw() time.Duration
}

type ActorDirectory interface {
	Lookup(ref ActorRef) (*Actor, bool)
}

// ChainSink receives the full record list of a demand chain when an actor closes it.
type ChainSink interface {
	ExportChain(ctx context.Context, owner ActorRef, demandId DemandId, records []ContentRecord) error
}

type RoleRef struct {
	Actor ActorRef
	Role  string
}

func (r RoleRef) String() string {
	return string(r.Actor) + "/" + r.Role
}

type DispatchObserver interface {
	MessageQueued(role RoleRef, message *Message, queueSize int)
	MessageDispatched(role RoleRef, message *Message, result DispatchResult)
	DelayDrawn(role RoleRef, delay time.Duration)
	SchedulingFailed(role RoleRef, err error)
}

type nopObserver struct{}

func (nopObserver) MessageQueued(RoleRef, *Message, int)                {}
func (nopObserver) MessageDispatched(RoleRef, *Message, DispatchResult) {}
func (nopObserver) DelayDrawn(RoleRef, time.Duration)                   {}
func (nopObserver) SchedulingFailed(RoleRef, error)                     {}
