// Package catalog declares an Order payload whose package and type name
// collide with the west catalog, for type tag tests.
package catalog

import "bizsim/simulation/domain"

type Order struct {
	domain.ContentHeader
	Amount int
}

func NewOrder(demandId domain.DemandId, amount int) *Order {
	return &Order{ContentHeader: domain.NewContentHeader(demandId), Amount: amount}
}
