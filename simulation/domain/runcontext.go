package domain

import (
	"log/slog"
)

// SequenceBaseline is the first arrival sequence handed out in a run. Zero is
// reserved for messages that were never queued.
const SequenceBaseline uint64 = 1

// Sequence hands out arrival ids. One Sequence belongs to one run and is shared
// by every MessageQueue of that run.
type Sequence struct {
	next uint64
}

func NewSequence() *Sequence {
	return &Sequence{next: SequenceBaseline}
}

func (s *Sequence) Next() uint64 {
	id := s.next
	s.next++
	return id
}

func (s *Sequence) Peek() uint64 {
	return s.next
}

// RunContext carries everything a simulation run shares between its actors.
type RunContext struct {
	RunId     string
	Scheduler Scheduler
	Directory *Directory
	Sequence  *Sequence
	Observer  DispatchObserver
	Sink      ChainSink
	Logger    *slog.Logger
}

func NewRunContext(runId string, scheduler Scheduler, observer DispatchObserver, sink ChainSink, logger *slog.Logger) *RunContext {
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("run_id", runId)

	return &RunContext{
		RunId:     runId,
		Scheduler: scheduler,
		Directory: NewDirectory(),
		Sequence:  NewSequence(),
		Observer:  observer,
		Sink:      sink,
		Logger:    logger,
	}
}
