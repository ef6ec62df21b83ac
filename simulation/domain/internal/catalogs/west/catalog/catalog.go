package catalog

import "bizsim/simulation/domain"

type Order struct {
	domain.ContentHeader
	Amount int
}

func NewOrder(demandId domain.DemandId, amount int) *Order {
	return &Order{ContentHeader: domain.NewContentHeader(demandId), Amount: amount}
}
