package plugins

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"bizsim/simulation/domain"
	"bizsim/utils"
)

type LocalChainSink struct {
	logger *slog.Logger
}

func NewLocalChainSink(logger *slog.Logger) *LocalChainSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalChainSink{logger: logger}
}

func (s *LocalChainSink) ExportChain(_ context.Context, owner domain.ActorRef, demandId domain.DemandId, records []domain.ContentRecord) error {
	types := make([]string, 0, len(records))
	for _, record := range records {
		types = append(types, string(record.Type))
	}
	s.logger.Info("demand chain closed", "owner", owner, "demand", demandId, "records", len(records), "types", types)
	return nil
}

type ExportedChain struct {
	Owner    domain.ActorRef
	DemandId domain.DemandId
	Records  []domain.ContentRecord
}

// MemoryChainSink keeps every exported chain. Safe for concurrent replications.
type MemoryChainSink struct {
	mu     sync.Mutex
	chains []ExportedChain
}

func NewMemoryChainSink() *MemoryChainSink {
	return &MemoryChainSink{}
}

func (s *MemoryChainSink) ExportChain(_ context.Context, owner domain.ActorRef, demandId domain.DemandId, records []domain.ContentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chains = append(s.chains, ExportedChain{Owner: owner, DemandId: demandId, Records: slices.Clone(records)})
	return nil
}

func (s *MemoryChainSink) Chains() []ExportedChain {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.chains)
}

func (s *MemoryChainSink) ChainsOf(owner domain.ActorRef) []ExportedChain {
	var owned []ExportedChain
	for _, chain := range s.Chains() {
		if chain.Owner == owner {
			owned = append(owned, chain)
		}
	}
	return owned
}

// Owners lists the actors that exported at least one chain, sorted.
func (s *MemoryChainSink) Owners() []domain.ActorRef {
	owners := utils.NewMapSet[domain.ActorRef]()
	for _, chain := range s.Chains() {
		owners.Add(chain.Owner)
	}
	return utils.SortedSlice[domain.ActorRef](owners)
}
