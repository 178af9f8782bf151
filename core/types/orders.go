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

// FloatingPointTolerance is the absolute tolerance used when comparing
// energies, prices and rates.
const FloatingPointTolerance = 1e-5

// Side tells whether an order sells energy (an offer) or buys it (a bid).
type Side int

const (
	SideUnspecified Side = iota
	// SideSell is the side of offers.
	SideSell
	// SideBuy is the side of bids.
	SideBuy
)

func (s Side) String() string {
	switch s {
	case SideSell:
		return "offer"
	case SideBuy:
		return "bid"
	default:
		return "unspecified"
	}
}

// Opposite returns the side an order of this side trades against.
func (s Side) Opposite() Side {
	switch s {
	case SideSell:
		return SideBuy
	case SideBuy:
		return SideSell
	default:
		return SideUnspecified
	}
}

// Order is an offer (SideSell) or a bid (SideBuy) for a fixed amount of
// energy at a total price. Orders are passed around by value, a copy never
// aliases the ledger's own record.
type Order struct {
	ID     string
	Side   Side
	Energy float64
	Price  float64
	// OriginalPrice is the price before any fee markup was applied, carried
	// unchanged through forwarding.
	OriginalPrice float64
	// Trader is the seller of an offer or the buyer of a bid.
	Trader       TraderDetails
	CreatedAt    time.Time
	TimeSlot     time.Time
	Attributes   Attributes
	Requirements []Requirement
}

// NewOffer returns an unplaced offer, the market assigns its id.
func NewOffer(price, energy float64, seller TraderDetails) Order {
	return Order{
		Side:          SideSell,
		Energy:        energy,
		Price:         price,
		OriginalPrice: price,
		Trader:        seller,
	}
}

// NewBid returns an unplaced bid, the market assigns its id.
func NewBid(price, energy float64, buyer TraderDetails) Order {
	return Order{
		Side:          SideBuy,
		Energy:        energy,
		Price:         price,
		OriginalPrice: price,
		Trader:        buyer,
	}
}

func (o Order) IsOffer() bool { return o.Side == SideSell }

func (o Order) IsBid() bool { return o.Side == SideBuy }

// EnergyRate is the price per kWh.
func (o Order) EnergyRate() float64 {
	if o.Energy == 0 {
		return 0
	}
	return o.Price / o.Energy
}

// OriginalRate is the original price per kWh.
func (o Order) OriginalRate() float64 {
	if o.Energy == 0 {
		return 0
	}
	return o.OriginalPrice / o.Energy
}

// Clone returns a deep copy of the order, the requirement slices included.
func (o Order) Clone() Order {
	c := o
	if o.Requirements != nil {
		c.Requirements = make([]Requirement, 0, len(o.Requirements))
		for _, r := range o.Requirements {
			c.Requirements = append(c.Requirements, r.Clone())
		}
	}
	return c
}

func (o Order) String() string {
	return fmt.Sprintf(
		"%s{%s} [%s]: %.4f kWh @ %.4f (rate %.4f)",
		o.Side, o.ID, o.Trader.Name, o.Energy, o.Price, o.EnergyRate(),
	)
}

// Attributes describe the energy an order carries.
type Attributes struct {
	EnergyType string
}
