package supplychain

import "bizsim/simulation/domain"

const (
	priorityUrgent int32 = 0
	priorityNormal int32 = 1
)

type InternalDemand struct {
	domain.ContentHeader
	Product string
	Amount  int
}

type RequestForQuote struct {
	domain.ContentHeader
	Product string
	Amount  int
}

type Quote struct {
	domain.ContentHeader
	Product   string
	Amount    int
	UnitPrice float64
	Supplier  domain.ActorRef
}

func (q *Quote) TotalPrice() float64 {
	return q.UnitPrice * float64(q.Amount)
}

// QuoteRejected tells a supplier its quote lost; the demand is abandoned on its side.
type QuoteRejected struct {
	domain.ContentHeader
	Supplier domain.ActorRef
}

type Order struct {
	domain.ContentHeader
	Product string
	Amount  int
	Price   float64
}

type Shipment struct {
	domain.ContentHeader
	Product string
	Amount  int
}

type Invoice struct {
	domain.ContentHeader
	Amount float64
	Payee  domain.ActorRef
}

type PaymentInstruction struct {
	domain.ContentHeader
	Amount float64
	Payer  domain.ActorRef
	Payee  domain.ActorRef
}

type Payment struct {
	domain.ContentHeader
	Amount float64
	Payer  domain.ActorRef
}
