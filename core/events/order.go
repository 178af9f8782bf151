// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package events

import (
	"fmt"

	"github.com/gridsingularity/gsy-e-sub001/core/types"
)

// OrderPlaced carries a snapshot of an order inserted in a market.
type OrderPlaced struct {
	*Base
	marketID string
	o        types.Order
}

func NewOrderPlaced(marketID string, o types.Order) *OrderPlaced {
	return &OrderPlaced{
		Base:     newBase(OrderPlacedEvent),
		marketID: marketID,
		o:        o.Clone(),
	}
}

func (e OrderPlaced) MarketID() string {
	return e.marketID
}

// Order returns a copy of the placed order.
func (e OrderPlaced) Order() types.Order {
	return e.o.Clone()
}

func (e OrderPlaced) String() string {
	return fmt.Sprintf("%s on market %s: %s", e.et, e.marketID, e.o)
}

// OrderDeleted carries a snapshot of an order removed from a market by a
// cancellation.
type OrderDeleted struct {
	*Base
	marketID string
	o        types.Order
}

func NewOrderDeleted(marketID string, o types.Order) *OrderDeleted {
	return &OrderDeleted{
		Base:     newBase(OrderDeletedEvent),
		marketID: marketID,
		o:        o.Clone(),
	}
}

func (e OrderDeleted) MarketID() string {
	return e.marketID
}

func (e OrderDeleted) Order() types.Order {
	return e.o.Clone()
}

// OrderSplit carries the three orders involved in a partial acceptance: the
// order as it was, the accepted part which keeps the original id, and the
// residual re-inserted under a fresh id.
type OrderSplit struct {
	*Base
	marketID string
	original types.Order
	accepted types.Order
	residual types.Order
}

func NewOrderSplit(marketID string, original, accepted, residual types.Order) *OrderSplit {
	return &OrderSplit{
		Base:     newBase(OrderSplitEvent),
		marketID: marketID,
		original: original.Clone(),
		accepted: accepted.Clone(),
		residual: residual.Clone(),
	}
}

func (e OrderSplit) MarketID() string {
	return e.marketID
}

func (e OrderSplit) Original() types.Order {
	return e.original.Clone()
}

func (e OrderSplit) Accepted() types.Order {
	return e.accepted.Clone()
}

func (e OrderSplit) Residual() types.Order {
	return e.residual.Clone()
}
