package plugins

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"bizsim/simulation/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type restock struct {
	domain.ContentHeader
	Amount int
}

var selling = domain.RoleRef{Actor: "acme", Role: "selling"}

func restockMessage() *domain.Message {
	return domain.NewMessage("acme", "acme", 0, 0, &restock{ContentHeader: domain.NewContentHeader(domain.NewDemandId()), Amount: 3})
}

func TestPrometheusObserverCountsDispatches(t *testing.T) {
	registry := prometheus.NewRegistry()
	observer, err := NewPrometheusObserver(registry)
	require.NoError(t, err)

	m := restockMessage()
	observer.MessageQueued(selling, m, 4)
	observer.MessageDispatched(selling, m, domain.DispatchResult{Outcome: domain.Handled, Success: true})
	observer.MessageDispatched(selling, m, domain.DispatchResult{Outcome: domain.Handled, Success: false})
	observer.MessageDispatched(selling, m, domain.DispatchResult{Outcome: domain.Handled, Success: false})
	observer.DelayDrawn(selling, 2*time.Second)
	observer.SchedulingFailed(selling, errors.New("closed"))

	messageType := string(m.Type)
	assert.Equal(t, 1.0, testutil.ToFloat64(observer.MessagesQueued.WithLabelValues("selling", messageType)))
	assert.Equal(t, 4.0, testutil.ToFloat64(observer.QueueSize.WithLabelValues("selling")))
	assert.Equal(t, 1.0, testutil.ToFloat64(observer.MessagesDispatched.WithLabelValues("selling", messageType, "handled", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(observer.MessagesDispatched.WithLabelValues("selling", messageType, "handled", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(observer.SchedulingFailures.WithLabelValues("selling")))
	assert.Equal(t, 1, testutil.CollectAndCount(observer.HandlingDelay))
}

func TestPrometheusObserverRegistersOnce(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewPrometheusObserver(registry)
	require.NoError(t, err)

	_, err = NewPrometheusObserver(registry)
	assert.Error(t, err)
}

type countingObserver struct {
	queued, dispatched, delays, failures int
}

func (c *countingObserver) MessageQueued(domain.RoleRef, *domain.Message, int) { c.queued++ }
func (c *countingObserver) MessageDispatched(domain.RoleRef, *domain.Message, domain.DispatchResult) {
	c.dispatched++
}
func (c *countingObserver) DelayDrawn(domain.RoleRef, time.Duration) { c.delays++ }
func (c *countingObserver) SchedulingFailed(domain.RoleRef, error)   { c.failures++ }

func TestMultiObserverForwardsToEveryObserver(t *testing.T) {
	first, second := &countingObserver{}, &countingObserver{}
	observer := MultiObserver{first, NewLocalObserver(slog.New(slog.NewTextHandler(io.Discard, nil))), second}

	m := restockMessage()
	observer.MessageQueued(selling, m, 1)
	observer.MessageDispatched(selling, m, domain.DispatchResult{Outcome: domain.Queued})
	observer.DelayDrawn(selling, time.Second)
	observer.SchedulingFailed(selling, errors.New("closed"))

	for _, c := range []*countingObserver{first, second} {
		assert.Equal(t, countingObserver{queued: 1, dispatched: 1, delays: 1, failures: 1}, *c)
	}
}

func TestMemoryChainSinkCopiesRecords(t *testing.T) {
	sink := NewMemoryChainSink()
	content := &restock{ContentHeader: domain.NewContentHeader(domain.NewDemandId()), Amount: 1}
	records := []domain.ContentRecord{{Content: content, Type: domain.TypeOf(content), Sent: true, Position: 1}}

	require.NoError(t, sink.ExportChain(context.Background(), "acme", content.DemandId, records))
	records[0].Sent = false

	chains := sink.ChainsOf("acme")
	require.Len(t, chains, 1)
	assert.True(t, chains[0].Records[0].Sent)
	assert.Empty(t, sink.ChainsOf("globex"))

	assert.NoError(t, NewLocalChainSink(nil).ExportChain(context.Background(), "acme", content.DemandId, records))
}
