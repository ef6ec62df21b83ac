package supplychain

import (
	"context"

	"bizsim/simulation/domain"
)

// Bank executes payment instructions on behalf of its clients.
type Bank struct {
	actor *domain.Actor
	ctx   context.Context

	Balances map[domain.ActorRef]float64
}

func NewBank(run *domain.RunContext, id domain.ActorRef) (*Bank, error) {
	actor, err := domain.NewActor(id, run)
	if err != nil {
		return nil, err
	}
	b := &Bank{actor: actor, ctx: context.Background(), Balances: make(map[domain.ActorRef]float64)}

	banking := domain.NewRole("banking", domain.NewDirectReceiver())
	if err = domain.RegisterPolicy(banking, b.onPaymentInstruction); err != nil {
		return nil, err
	}
	if err = actor.AddRole(banking); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bank) Actor() *domain.Actor {
	return b.actor
}

func (b *Bank) Start(ctx context.Context) error {
	b.ctx = ctx
	return nil
}

func (b *Bank) onPaymentInstruction(_ *domain.Message, instruction *PaymentInstruction) bool {
	payment := &Payment{
		ContentHeader: domain.DeriveHeader(instruction),
		Amount:        instruction.Amount,
		Payer:         instruction.Payer,
	}
	if _, err := b.actor.Send(payment, instruction.Payee, priorityNormal); err != nil {
		b.actor.Logger().Warn("could not transfer payment", "payee", instruction.Payee, "error", err)
		return false
	}
	b.Balances[instruction.Payer] -= instruction.Amount
	b.Balances[instruction.Payee] += instruction.Amount

	if err := b.actor.ContentStore().CloseDemand(b.ctx, instruction.DemandId); err != nil {
		b.actor.Logger().Warn("could not close demand", "demand", instruction.DemandId, "error", err)
	}
	return true
}
