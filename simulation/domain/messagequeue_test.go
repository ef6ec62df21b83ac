package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueAssignsIdsFromTheSharedSequence(t *testing.T) {
	sequence := NewSequence()
	first := NewMessageQueue(Fifo(), sequence)
	second := NewMessageQueue(Fifo(), sequence)
	demandId := NewDemandId()

	id, err := first.Enqueue(message("a", 0, newOrder(demandId, 1)))
	require.NoError(t, err)
	assert.Equal(t, SequenceBaseline, id)

	id, err = second.Enqueue(message("a", 0, newOrder(demandId, 1)))
	require.NoError(t, err)
	assert.Equal(t, SequenceBaseline+1, id)

	assert.Equal(t, SequenceBaseline+2, sequence.Peek())
}

func TestEnqueueRejectsTheSameMessageTwice(t *testing.T) {
	queue := NewMessageQueue(Fifo(), NewSequence())
	m := message("a", 0, newOrder(NewDemandId(), 1))

	_, err := queue.Enqueue(m)
	require.NoError(t, err)
	_, err = queue.Enqueue(m)
	assert.ErrorIs(t, err, ErrDuplicateMessage)
	assert.Equal(t, 1, queue.Size())
}

func TestPeekDoesNotRemove(t *testing.T) {
	queue := NewMessageQueue(Fifo(), NewSequence())
	_, ok := queue.PeekMin()
	assert.False(t, ok)
	_, ok = queue.DequeueMin()
	assert.False(t, ok)

	enqueueAll(t, queue, message("a", 0, newOrder(NewDemandId(), 1)))
	head, ok := queue.PeekMin()
	require.True(t, ok)
	assert.Equal(t, SequenceBaseline, head.Id)
	assert.Equal(t, 1, queue.Size())
}

func TestRemoveById(t *testing.T) {
	queue := NewMessageQueue(Fifo(), NewSequence())
	demandId := NewDemandId()
	enqueueAll(t, queue,
		message("a", 0, newOrder(demandId, 1)),
		message("a", 0, newOrder(demandId, 2)),
		message("a", 0, newOrder(demandId, 3)),
	)

	assert.True(t, queue.Remove(2))
	assert.False(t, queue.Remove(2))
	assert.False(t, queue.Contains(2))
	assert.True(t, queue.Contains(3))
	assert.Equal(t, []uint64{1, 3}, drainIds(t, queue))
}

func TestEnqueueRefusesAMessageQueuedElsewhere(t *testing.T) {
	sequence := NewSequence()
	first := NewMessageQueue(Fifo(), sequence)
	second := NewMessageQueue(Fifo(), sequence)
	m := message("a", 0, newOrder(NewDemandId(), 1))

	id, err := first.Enqueue(m)
	require.NoError(t, err)
	_, err = second.Enqueue(m)
	assert.ErrorIs(t, err, ErrDuplicateMessage)
	assert.Equal(t, id, m.Id)
	assert.Zero(t, second.Size())

	assert.True(t, first.Remove(id))
	assert.True(t, first.IsEmpty())
}
