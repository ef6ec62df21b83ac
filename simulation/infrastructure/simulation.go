package infrastructure

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"bizsim/simulation/domain"
	"bizsim/supplychain"
)

type Simulation struct {
	run       *domain.RunContext
	scheduler *EventScheduler
	horizon   time.Duration
	seed      int64

	Banks     []*supplychain.Bank
	Suppliers []*supplychain.Supplier
	Buyers    []*supplychain.Buyer
}

type Summary struct {
	RunId             string
	Seed              int64
	SimulatedTime     time.Duration
	EventsFired       int
	MessagesSequenced uint64
	DemandsIssued     int
	DemandsCompleted  int
	OrdersShipped     int
	OrdersDeferred    int
	Revenue           float64
	OpenDemands       int
}

// BuildNewSimulation assembles every actor of the scenario on a fresh run
// context. Draws come from one generator seeded with seed, so equal seeds give
// equal runs.
func BuildNewSimulation(scenario *Scenario, runId string, seed int64, observer domain.DispatchObserver, sink domain.ChainSink, logger *slog.Logger) (*Simulation, error) {
	scheduler := NewEventScheduler()
	run := domain.NewRunContext(runId, scheduler, observer, sink, logger)
	rnd := rand.New(rand.NewSource(seed))

	sim := &Simulation{run: run, scheduler: scheduler, horizon: scenario.Horizon, seed: seed}

	for _, spec := range scenario.Banks {
		bank, err := supplychain.NewBank(run, domain.ActorRef(spec.Id))
		if err != nil {
			return nil, err
		}
		sim.Banks = append(sim.Banks, bank)
	}

	for _, spec := range scenario.Suppliers {
		supplier, err := buildSupplier(run, spec, rnd)
		if err != nil {
			return nil, fmt.Errorf("supplier '%v': %w", spec.Id, err)
		}
		sim.Suppliers = append(sim.Suppliers, supplier)
	}

	for _, spec := range scenario.Buyers {
		buyer, err := buildBuyer(run, spec, rnd)
		if err != nil {
			return nil, fmt.Errorf("buyer '%v': %w", spec.Id, err)
		}
		sim.Buyers = append(sim.Buyers, buyer)
	}

	return sim, nil
}

func buildSupplier(run *domain.RunContext, spec SupplierSpec, rnd *rand.Rand) (*supplychain.Supplier, error) {
	ordering, err := domain.OrderingChainByName(spec.Ordering)
	if err != nil {
		return nil, err
	}
	handlingDelay, err := BuildDelayDistribution(spec.HandlingDelay, rnd)
	if err != nil {
		return nil, err
	}
	var restockInterval domain.DelayDistribution
	if spec.RestockAmount > 0 {
		if restockInterval, err = BuildDelayDistribution(spec.RestockInterval, rnd); err != nil {
			return nil, err
		}
	}
	transportDelay, err := BuildDelayDistribution(spec.TransportDelay, rnd)
	if err != nil {
		return nil, err
	}

	return supplychain.NewSupplier(run, domain.ActorRef(spec.Id), supplychain.SupplierParams{
		UnitPrice:     spec.UnitPrice,
		Stock:         spec.Stock,
		RestockAmount: spec.RestockAmount,
	}, ordering, handlingDelay, restockInterval, transportDelay)
}

func buildBuyer(run *domain.RunContext, spec BuyerSpec, rnd *rand.Rand) (*supplychain.Buyer, error) {
	demandInterval, err := BuildDelayDistribution(spec.DemandInterval, rnd)
	if err != nil {
		return nil, err
	}
	warehouseDelay, err := BuildDelayDistribution(spec.WarehouseDelay, rnd)
	if err != nil {
		return nil, err
	}

	suppliers := make([]domain.ActorRef, 0, len(spec.Suppliers))
	for _, supplier := range spec.Suppliers {
		suppliers = append(suppliers, domain.ActorRef(supplier))
	}

	return supplychain.NewBuyer(run, domain.ActorRef(spec.Id), supplychain.BuyerParams{
		Product:   spec.Product,
		Amount:    spec.Amount,
		Suppliers: suppliers,
		Bank:      domain.ActorRef(spec.Bank),
	}, demandInterval, warehouseDelay)
}

func (s *Simulation) RunContext() *domain.RunContext {
	return s.run
}

func (s *Simulation) Scheduler() *EventScheduler {
	return s.scheduler
}

// Run starts every actor and advances the clock up to the horizon.
func (s *Simulation) Run(ctx context.Context) (Summary, error) {
	for _, bank := range s.Banks {
		if err := bank.Start(ctx); err != nil {
			return Summary{}, err
		}
	}
	for _, supplier := range s.Suppliers {
		if err := supplier.Start(ctx); err != nil {
			return Summary{}, err
		}
	}
	for _, buyer := range s.Buyers {
		if err := buyer.Start(ctx); err != nil {
			return Summary{}, err
		}
	}

	startTime := time.Now()
	if err := s.scheduler.RunUntil(ctx, s.horizon); err != nil {
		return s.Summary(), err
	}
	summary := s.Summary()
	s.run.Logger.Info("simulation completed",
		"simulated", summary.SimulatedTime,
		"events", summary.EventsFired,
		"demands_completed", summary.DemandsCompleted,
		"elapsed", time.Since(startTime))
	return summary, nil
}

func (s *Simulation) Summary() Summary {
	summary := Summary{
		RunId:             s.run.RunId,
		Seed:              s.seed,
		SimulatedTime:     s.scheduler.Now(),
		EventsFired:       s.scheduler.Fired(),
		MessagesSequenced: s.run.Sequence.Peek() - domain.SequenceBaseline,
	}
	for _, buyer := range s.Buyers {
		summary.DemandsIssued += buyer.DemandsIssued
		summary.DemandsCompleted += buyer.DemandsCompleted
		summary.OpenDemands += buyer.Actor().ContentStore().Size()
	}
	for _, supplier := range s.Suppliers {
		summary.OrdersShipped += supplier.OrdersShipped
		summary.OrdersDeferred += supplier.OrdersDeferred
		summary.Revenue += supplier.Revenue
	}
	return summary
}
