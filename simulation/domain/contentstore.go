package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/exp/slices"

	"bizsim/utils"
)

type ContentRecord struct {
	Content  Content
	Type     MessageType
	Sent     bool
	Position int
}

type demandChain struct {
	records []ContentRecord
}

// ContentStore indexes the contents an actor sent and received by demand id so
// that every step of a demand chain can be found again. Only the owning actor
// writes to it; observers may read concurrently.
type ContentStore struct {
	owner  ActorRef
	sink   ChainSink
	logger *slog.Logger

	mu        sync.RWMutex
	chains    map[DemandId]*demandChain
	positions int
}

func NewContentStore(owner ActorRef, sink ChainSink, logger *slog.Logger) *ContentStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ContentStore{
		owner:  owner,
		sink:   sink,
		logger: logger.With("actor", owner),
		chains: make(map[DemandId]*demandChain),
	}
}

func (cs *ContentStore) AddContent(content Content, sent bool) error {
	if content == nil {
		return errors.New("cannot store nil content")
	}
	demandId := content.GetDemandId()
	if demandId == "" {
		return fmt.Errorf("content %v of type '%v': %w", content.GetId(), TypeOf(content), ErrMissingDemandId)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	chain, ok := cs.chains[demandId]
	if !ok {
		chain = &demandChain{}
		cs.chains[demandId] = chain
	}
	cs.positions++
	chain.records = append(chain.records, ContentRecord{
		Content:  content,
		Type:     TypeOf(content),
		Sent:     sent,
		Position: cs.positions,
	})
	return nil
}

// RemoveContent removes the record of this content with the given direction.
func (cs *ContentStore) RemoveContent(content Content, sent bool) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	demandId := content.GetDemandId()
	chain, ok := cs.chains[demandId]
	if !ok {
		return false
	}
	position := slices.IndexFunc(chain.records, func(record ContentRecord) bool {
		return record.Sent == sent && record.Content.GetId() == content.GetId()
	})
	if position < 0 {
		return false
	}
	chain.records = slices.Delete(chain.records, position, position+1)
	if len(chain.records) == 0 {
		delete(cs.chains, demandId)
	}
	return true
}

// RemoveAllContent forgets a demand chain. Unknown demand ids are ignored.
func (cs *ContentStore) RemoveAllContent(demandId DemandId) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.chains, demandId)
}

// GetContentList returns sent and received contents of exactly the given type.
func (cs *ContentStore) GetContentList(demandId DemandId, contentType MessageType) []Content {
	return cs.filter(demandId, func(record ContentRecord) bool {
		return record.Type == contentType
	})
}

func (cs *ContentStore) GetContentListBySent(demandId DemandId, contentType MessageType, sent bool) []Content {
	return cs.filter(demandId, func(record ContentRecord) bool {
		return record.Type == contentType && record.Sent == sent
	})
}

func (cs *ContentStore) filter(demandId DemandId, keep func(record ContentRecord) bool) []Content {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	var contents []Content
	chain, ok := cs.chains[demandId]
	if !ok {
		return contents
	}
	for _, record := range chain.records {
		if keep(record) {
			contents = append(contents, record.Content)
		}
	}
	return contents
}

// Chain returns every record of the demand in insertion order.
func (cs *ContentStore) Chain(demandId DemandId) []ContentRecord {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	chain, ok := cs.chains[demandId]
	if !ok {
		return nil
	}
	return slices.Clone(chain.records)
}

func (cs *ContentStore) HasDemand(demandId DemandId) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	_, ok := cs.chains[demandId]
	return ok
}

func (cs *ContentStore) DemandIds() []DemandId {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return utils.SortedKeys(cs.chains)
}

func (cs *ContentStore) Size() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return len(cs.chains)
}

// CloseDemand exports the chain to the sink, if any, and purges it. A failed
// export keeps the chain in the store.
func (cs *ContentStore) CloseDemand(ctx context.Context, demandId DemandId) error {
	records := cs.Chain(demandId)
	if records == nil {
		return nil
	}

	if cs.sink != nil {
		if err := cs.sink.ExportChain(ctx, cs.owner, demandId, records); err != nil {
			cs.logger.Warn("could not export demand chain", "demand", demandId, "error", err)
			return fmt.Errorf("exporting demand '%v': %w", demandId, err)
		}
	}

	cs.RemoveAllContent(demandId)
	cs.logger.Debug("demand chain closed", "demand", demandId, "records", len(records))
	return nil
}

func ContentListOf[T Content](cs *ContentStore, demandId DemandId) []T {
	return typed[T](cs.GetContentList(demandId, TypeFor[T]()))
}

func ContentListBySentOf[T Content](cs *ContentStore, demandId DemandId, sent bool) []T {
	return typed[T](cs.GetContentListBySent(demandId, TypeFor[T](), sent))
}

// LastContentOf returns the most recently stored content of type T for the demand.
func LastContentOf[T Content](cs *ContentStore, demandId DemandId, sent bool) (T, bool) {
	contents := ContentListBySentOf[T](cs, demandId, sent)
	if len(contents) == 0 {
		var zero T
		return zero, false
	}
	return contents[len(contents)-1], true
}

func typed[T Content](contents []Content) []T {
	result := make([]T, 0, len(contents))
	for _, content := range contents {
		result = append(result, content.(T))
	}
	return result
}
