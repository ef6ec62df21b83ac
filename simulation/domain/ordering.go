package domain

import (
	"cmp"
	"fmt"
	"log/slog"
	"time"
)

type Comparison int

const (
	Less         Comparison = -1
	Equal        Comparison = 0
	Greater      Comparison = 1
	Incomparable Comparison = 2
)

// Step is one key of an OrderingChain.
type Step struct {
	name    string
	compare func(a *Message, b *Message) Comparison
	reverse bool
}

// By builds a step from a key extractor. An extractor reporting false on either
// side makes the step Incomparable, which the chain treats as a tie.
func By[K cmp.Ordered](name string, extract func(m *Message) (K, bool)) Step {
	return Step{
		name: name,
		compare: func(a *Message, b *Message) Comparison {
			ka, okA := extract(a)
			kb, okB := extract(b)
			if !okA || !okB {
				return Incomparable
			}
			return Comparison(cmp.Compare(ka, kb))
		},
	}
}

// ByContent extracts the key from the payload; payloads of another type are incomparable.
func ByContent[C Content, K cmp.Ordered](name string, extract func(content C) K) Step {
	return By(name, func(m *Message) (K, bool) {
		content, ok := m.Payload.(C)
		if !ok {
			var zero K
			return zero, false
		}
		return extract(content), true
	})
}

func ByArrival() Step {
	return By("arrival", func(m *Message) (uint64, bool) { return m.Id, true })
}

func ByPriority() Step {
	return By("priority", func(m *Message) (int32, bool) { return m.Priority, true })
}

func ByTimestamp() Step {
	return By("timestamp", func(m *Message) (time.Duration, bool) { return m.Timestamp, true })
}

func BySender() Step {
	return By("sender", func(m *Message) (ActorRef, bool) { return m.Sender, m.Sender != "" })
}

func ByType() Step {
	return By("type", func(m *Message) (MessageType, bool) { return m.Type, m.Type != "" })
}

func (s Step) Reversed() Step {
	s.reverse = !s.reverse
	return s
}

func (s Step) Name() string {
	return s.name
}

// OrderingChain compares messages step by step. When every step ties, arrival
// order decides, so two distinct queued messages never compare equal.
type OrderingChain struct {
	name   string
	steps  []Step
	logger *slog.Logger
}

func NewOrderingChain(name string, steps ...Step) *OrderingChain {
	return &OrderingChain{name: name, steps: append([]Step(nil), steps...)}
}

// Then returns a new chain with the step appended.
func (c *OrderingChain) Then(step Step) *OrderingChain {
	steps := make([]Step, 0, len(c.steps)+1)
	steps = append(steps, c.steps...)
	steps = append(steps, step)
	return &OrderingChain{name: c.name + "+" + step.name, steps: steps, logger: c.logger}
}

// WithLogger returns a copy of the chain reporting incomparable steps to logger.
func (c *OrderingChain) WithLogger(logger *slog.Logger) *OrderingChain {
	return &OrderingChain{name: c.name, steps: c.steps, logger: logger}
}

func (c *OrderingChain) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

func (c *OrderingChain) Name() string {
	return c.name
}

func (c *OrderingChain) Compare(a *Message, b *Message) int {
	for _, step := range c.steps {
		result := step.compare(a, b)
		switch result {
		case Incomparable:
			c.log().Debug("ordering step incomparable, falling through",
				"chain", c.name, "step", step.name, "a", a.Id, "b", b.Id)
			continue
		case Equal:
			continue
		}
		if step.reverse {
			return -int(result)
		}
		return int(result)
	}

	return cmp.Compare(a.Id, b.Id)
}

func Fifo() *OrderingChain {
	return NewOrderingChain("fifo")
}

func Lifo() *OrderingChain {
	return NewOrderingChain("lifo", ByArrival().Reversed())
}

func Priority() *OrderingChain {
	return NewOrderingChain("priority", ByPriority())
}

func ReversePriority() *OrderingChain {
	return NewOrderingChain("reverse-priority", ByPriority().Reversed())
}

func OrderingChainByName(name string) (*OrderingChain, error) {
	switch name {
	case "", "fifo":
		return Fifo(), nil
	case "lifo":
		return Lifo(), nil
	case "priority":
		return Priority(), nil
	case "reverse-priority":
		return ReversePriority(), nil
	default:
		return nil, fmt.Errorf("unknown ordering chain '%v'", name)
	}
}
