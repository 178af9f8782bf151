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

package types

import (
	"fmt"
	"time"
)

// Trade records the acceptance of (part of) an order.
type Trade struct {
	ID       string
	MarketID string
	Time     time.Time
	// Order is the accepted portion of the matched order, priced at the
	// trade price.
	Order  Order
	Seller TraderDetails
	Buyer  TraderDetails
	Energy float64
	Price  float64
	// FeePrice is the part of Price collected as grid fee.
	FeePrice float64
	// Residual is the leftover order re-inserted into the market when the
	// trade only consumed part of the order.
	Residual *Order
	// AlreadyTracked is set on the bid side of a bid/offer pair whose offer
	// side was already accounted for in the market statistics.
	AlreadyTracked bool
	Balancing      bool
}

// Side returns the side of the matched order.
func (t Trade) Side() Side {
	return t.Order.Side
}

// IsOfferTrade returns true if the matched order was an offer.
func (t Trade) IsOfferTrade() bool { return t.Order.Side == SideSell }

// IsBidTrade returns true if the matched order was a bid.
func (t Trade) IsBidTrade() bool { return t.Order.Side == SideBuy }

// Rate is the price per kWh paid for the trade.
func (t Trade) Rate() float64 {
	if t.Energy == 0 {
		return 0
	}
	return t.Price / t.Energy
}

// Involves returns true if name is the seller or the buyer of the trade.
func (t Trade) Involves(name string) bool {
	return t.Seller.Name == name || t.Buyer.Name == name
}

func (t Trade) String() string {
	residual := ""
	if t.Residual != nil {
		residual = fmt.Sprintf(" (residual %s)", t.Residual.ID)
	}
	return fmt.Sprintf(
		"trade{%s} [%s -> %s] %.4f kWh @ %.4f %s %s%s",
		t.ID, t.Seller.Name, t.Buyer.Name, t.Energy, t.Price, t.Order.Side, t.Order.ID, residual,
	)
}
