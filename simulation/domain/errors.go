package domain

import "errors"

var (
	ErrDuplicatePolicy  = errors.New("a policy is already registered for this message type")
	ErrMissingPolicy    = errors.New("no policy registered for this message type")
	ErrDuplicateRole    = errors.New("role already assigned to the actor")
	ErrMissingRole      = errors.New("role not found")
	ErrDuplicateActor   = errors.New("actor already registered")
	ErrUnknownActor     = errors.New("actor not registered")
	ErrDuplicateMessage = errors.New("message already queued")
	ErrSchedulingFailed = errors.New("scheduler rejected the continuation")
	ErrMissingDemandId  = errors.New("content carries no demand id")
	ErrInvalidDelay     = errors.New("delay must not be negative")
	ErrNilContinuation  = errors.New("continuation must not be nil")
)
