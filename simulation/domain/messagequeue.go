package domain

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// MessageQueue keeps pending messages sorted by its OrderingChain. The minimum
// element sits at index 0.
type MessageQueue struct {
	chain    *OrderingChain
	sequence *Sequence
	items    []*Message
	index    map[uint64]*Message
}

func NewMessageQueue(chain *OrderingChain, sequence *Sequence) *MessageQueue {
	if chain == nil {
		chain = Fifo()
	}
	return &MessageQueue{
		chain:    chain,
		sequence: sequence,
		index:    make(map[uint64]*Message),
	}
}

// Enqueue sequences the message with the next arrival id and inserts it. A
// message is sequenced once; one that already carries an id is refused.
func (q *MessageQueue) Enqueue(message *Message) (uint64, error) {
	if message.Id != 0 {
		return 0, fmt.Errorf("message %v: %w", message.Id, ErrDuplicateMessage)
	}

	message.Id = q.sequence.Next()
	position, _ := slices.BinarySearchFunc(q.items, message, q.chain.Compare)
	q.items = slices.Insert(q.items, position, message)
	q.index[message.Id] = message

	return message.Id, nil
}

func (q *MessageQueue) PeekMin() (*Message, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

func (q *MessageQueue) DequeueMin() (*Message, bool) {
	head, ok := q.PeekMin()
	if !ok {
		return nil, false
	}
	q.items = slices.Delete(q.items, 0, 1)
	delete(q.index, head.Id)
	return head, true
}

func (q *MessageQueue) Remove(id uint64) bool {
	if _, ok := q.index[id]; !ok {
		return false
	}
	position := slices.IndexFunc(q.items, func(m *Message) bool { return m.Id == id })
	if position < 0 {
		delete(q.index, id)
		return false
	}
	q.items = slices.Delete(q.items, position, position+1)
	delete(q.index, id)
	return true
}

func (q *MessageQueue) Contains(id uint64) bool {
	_, ok := q.index[id]
	return ok
}

func (q *MessageQueue) Size() int {
	return len(q.items)
}

func (q *MessageQueue) IsEmpty() bool {
	return q.Size() == 0
}

// ToSlice returns the queued messages in dequeue order.
func (q *MessageQueue) ToSlice() []*Message {
	dst := make([]*Message, len(q.items))
	copy(dst, q.items)
	return dst
}
