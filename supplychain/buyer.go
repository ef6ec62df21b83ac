package supplychain

import (
	"context"

	"bizsim/simulation/domain"
	"bizsim/utils"
)

type BuyerParams struct {
	Product   string
	Amount    int
	Suppliers []domain.ActorRef
	Bank      domain.ActorRef
}

// Buyer turns internal demands into requests for quotes, orders from the
// cheapest supplier and pays through its bank once the invoice arrives.
type Buyer struct {
	actor  *domain.Actor
	params BuyerParams
	ctx    context.Context

	demandInterval domain.DelayDistribution

	Stock            int
	Spent            float64
	DemandsIssued    int
	DemandsCompleted int

	paid    utils.Set[domain.DemandId]
	stocked utils.Set[domain.DemandId]
}

func NewBuyer(run *domain.RunContext, id domain.ActorRef, params BuyerParams, demandInterval domain.DelayDistribution, warehouseDelay domain.DelayDistribution) (*Buyer, error) {
	actor, err := domain.NewActor(id, run)
	if err != nil {
		return nil, err
	}
	b := &Buyer{
		actor:          actor,
		params:         params,
		ctx:            context.Background(),
		demandInterval: demandInterval,
		paid:           utils.NewMapSet[domain.DemandId](),
		stocked:        utils.NewMapSet[domain.DemandId](),
	}

	purchasing := domain.NewRole("purchasing", domain.NewDirectReceiver())
	if err = domain.RegisterPolicy(purchasing, b.onInternalDemand); err != nil {
		return nil, err
	}
	if err = domain.RegisterPolicy(purchasing, b.onQuote); err != nil {
		return nil, err
	}

	warehousing := domain.NewRole("warehousing", domain.NewDelayedReceiver(domain.Fifo(), warehouseDelay))
	if err = domain.RegisterPolicy(warehousing, b.onShipment); err != nil {
		return nil, err
	}

	financing := domain.NewRole("financing", domain.NewDirectReceiver())
	if err = domain.RegisterPolicy(financing, b.onInvoice); err != nil {
		return nil, err
	}

	for _, role := range []*domain.Role{purchasing, warehousing, financing} {
		if err = actor.AddRole(role); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Buyer) Actor() *domain.Actor {
	return b.actor
}

// Start schedules the first internal demand. Demands keep coming until the run horizon.
func (b *Buyer) Start(ctx context.Context) error {
	b.ctx = ctx
	return b.scheduleDemand()
}

func (b *Buyer) scheduleDemand() error {
	return b.actor.Schedule(b.demandInterval.Draw(), func() {
		b.IssueDemand()
		if err := b.scheduleDemand(); err != nil {
			b.actor.Logger().Warn("could not schedule next demand", "error", err)
		}
	})
}

func (b *Buyer) IssueDemand() domain.DemandId {
	demand := &InternalDemand{
		ContentHeader: domain.NewContentHeader(domain.NewDemandId()),
		Product:       b.params.Product,
		Amount:        b.params.Amount,
	}
	b.DemandsIssued++
	if _, err := b.actor.Send(demand, b.actor.GetId(), priorityNormal); err != nil {
		b.actor.Logger().Warn("could not issue demand", "demand", demand.DemandId, "error", err)
	}
	return demand.DemandId
}

func (b *Buyer) onInternalDemand(_ *domain.Message, demand *InternalDemand) bool {
	for _, supplier := range b.params.Suppliers {
		rfq := &RequestForQuote{
			ContentHeader: domain.DeriveHeader(demand),
			Product:       demand.Product,
			Amount:        demand.Amount,
		}
		if _, err := b.actor.Send(rfq, supplier, priorityNormal); err != nil {
			b.actor.Logger().Warn("could not request quote", "supplier", supplier, "error", err)
			return false
		}
	}
	return true
}

func (b *Buyer) onQuote(_ *domain.Message, quote *Quote) bool {
	store := b.actor.ContentStore()
	if len(domain.ContentListBySentOf[*Order](store, quote.DemandId, true)) > 0 {
		return true
	}

	quotes := domain.ContentListBySentOf[*Quote](store, quote.DemandId, false)
	if len(quotes) < len(b.params.Suppliers) {
		return true
	}

	best, _ := utils.MinBy(quotes, (*Quote).TotalPrice)

	order := &Order{
		ContentHeader: domain.DeriveHeader(best),
		Product:       best.Product,
		Amount:        best.Amount,
		Price:         best.TotalPrice(),
	}
	if _, err := b.actor.Send(order, best.Supplier, priorityUrgent); err != nil {
		b.actor.Logger().Warn("could not place order", "supplier", best.Supplier, "error", err)
		return false
	}

	for _, lost := range quotes {
		if lost.Supplier == best.Supplier {
			continue
		}
		rejection := &QuoteRejected{ContentHeader: domain.DeriveHeader(lost), Supplier: lost.Supplier}
		if _, err := b.actor.Send(rejection, lost.Supplier, priorityNormal); err != nil {
			b.actor.Logger().Warn("could not reject quote", "supplier", lost.Supplier, "error", err)
		}
	}
	return true
}

func (b *Buyer) onShipment(_ *domain.Message, shipment *Shipment) bool {
	b.Stock += shipment.Amount
	b.stocked.Add(shipment.DemandId)
	b.tryComplete(shipment.DemandId)
	return true
}

func (b *Buyer) onInvoice(_ *domain.Message, invoice *Invoice) bool {
	instruction := &PaymentInstruction{
		ContentHeader: domain.DeriveHeader(invoice),
		Amount:        invoice.Amount,
		Payer:         b.actor.GetId(),
		Payee:         invoice.Payee,
	}
	if _, err := b.actor.Send(instruction, b.params.Bank, priorityNormal); err != nil {
		b.actor.Logger().Warn("could not instruct payment", "bank", b.params.Bank, "error", err)
		return false
	}
	b.Spent += invoice.Amount
	b.paid.Add(invoice.DemandId)
	b.tryComplete(invoice.DemandId)
	return true
}

// tryComplete closes the demand chain once the goods are stocked and the invoice paid.
func (b *Buyer) tryComplete(demandId domain.DemandId) {
	if !b.paid.Contains(demandId) || !b.stocked.Contains(demandId) {
		return
	}
	if err := b.actor.ContentStore().CloseDemand(b.ctx, demandId); err != nil {
		return
	}
	b.paid.Remove(demandId)
	b.stocked.Remove(demandId)
	b.DemandsCompleted++
}
