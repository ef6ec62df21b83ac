package supplychain

import (
	"context"

	"bizsim/simulation/domain"
)

type SupplierParams struct {
	UnitPrice     float64
	Stock         int
	RestockAmount int
}

// Supplier quotes and fulfils orders through a delayed selling role. An order
// that cannot be served from stock is deferred and blocks the selling queue
// until the next restock wakes it.
type Supplier struct {
	actor   *domain.Actor
	params  SupplierParams
	selling *domain.Role
	ctx     context.Context

	restockInterval domain.DelayDistribution
	transportDelay  domain.DelayDistribution

	Stock          int
	Revenue        float64
	OrdersShipped  int
	OrdersDeferred int
	DemandsClosed  int
	QuotesRejected int
}

func NewSupplier(run *domain.RunContext, id domain.ActorRef, params SupplierParams, ordering *domain.OrderingChain, handlingDelay domain.DelayDistribution, restockInterval domain.DelayDistribution, transportDelay domain.DelayDistribution) (*Supplier, error) {
	actor, err := domain.NewActor(id, run)
	if err != nil {
		return nil, err
	}
	s := &Supplier{
		actor:           actor,
		params:          params,
		ctx:             context.Background(),
		restockInterval: restockInterval,
		transportDelay:  transportDelay,
		Stock:           params.Stock,
	}

	s.selling = domain.NewRole("selling", domain.NewDelayedReceiver(ordering, handlingDelay))
	if err = domain.RegisterPolicy(s.selling, s.onRequestForQuote); err != nil {
		return nil, err
	}
	if err = domain.RegisterPolicy(s.selling, s.onOrder); err != nil {
		return nil, err
	}

	negotiating := domain.NewRole("negotiating", domain.NewDirectReceiver())
	if err = domain.RegisterPolicy(negotiating, s.onQuoteRejected); err != nil {
		return nil, err
	}

	financing := domain.NewRole("financing", domain.NewDirectReceiver())
	if err = domain.RegisterPolicy(financing, s.onPayment); err != nil {
		return nil, err
	}

	for _, role := range []*domain.Role{s.selling, negotiating, financing} {
		if err = actor.AddRole(role); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Supplier) Actor() *domain.Actor {
	return s.actor
}

func (s *Supplier) Start(ctx context.Context) error {
	s.ctx = ctx
	if s.params.RestockAmount <= 0 || s.restockInterval == nil {
		return nil
	}
	return s.scheduleRestock()
}

func (s *Supplier) scheduleRestock() error {
	return s.actor.Schedule(s.restockInterval.Draw(), func() {
		s.Restock(s.params.RestockAmount)
		if err := s.scheduleRestock(); err != nil {
			s.actor.Logger().Warn("could not schedule next restock", "error", err)
		}
	})
}

// Restock adds goods and retries a deferred order, if any.
func (s *Supplier) Restock(amount int) {
	s.Stock += amount
	if err := s.selling.Wake(); err != nil {
		s.actor.Logger().Warn("could not resume selling after restock", "error", err)
	}
}

func (s *Supplier) onRequestForQuote(message *domain.Message, rfq *RequestForQuote) bool {
	quote := &Quote{
		ContentHeader: domain.DeriveHeader(rfq),
		Product:       rfq.Product,
		Amount:        rfq.Amount,
		UnitPrice:     s.params.UnitPrice,
		Supplier:      s.actor.GetId(),
	}
	if _, err := s.actor.Send(quote, message.Sender, priorityNormal); err != nil {
		s.actor.Logger().Warn("could not send quote", "buyer", message.Sender, "error", err)
		return false
	}
	return true
}

// onQuoteRejected drops the abandoned demand chain; nothing of it is exported.
func (s *Supplier) onQuoteRejected(_ *domain.Message, rejection *QuoteRejected) bool {
	s.actor.ContentStore().RemoveAllContent(rejection.DemandId)
	s.QuotesRejected++
	return true
}

func (s *Supplier) onOrder(message *domain.Message, order *Order) bool {
	if s.Stock < order.Amount {
		s.OrdersDeferred++
		return false
	}

	shipment := &Shipment{
		ContentHeader: domain.DeriveHeader(order),
		Product:       order.Product,
		Amount:        order.Amount,
	}
	if err := s.actor.SendAfter(shipment, message.Sender, priorityUrgent, s.transportDelay.Draw()); err != nil {
		s.actor.Logger().Warn("could not ship order", "buyer", message.Sender, "error", err)
		return false
	}
	s.Stock -= order.Amount
	s.OrdersShipped++

	invoice := &Invoice{
		ContentHeader: domain.DeriveHeader(order),
		Amount:        order.Price,
		Payee:         s.actor.GetId(),
	}
	if _, err := s.actor.Send(invoice, message.Sender, priorityNormal); err != nil {
		s.actor.Logger().Warn("could not send invoice", "buyer", message.Sender, "error", err)
	}
	return true
}

func (s *Supplier) onPayment(_ *domain.Message, payment *Payment) bool {
	s.Revenue += payment.Amount
	if err := s.actor.ContentStore().CloseDemand(s.ctx, payment.DemandId); err != nil {
		return true
	}
	s.DemandsClosed++
	return true
}
