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

package market

import (
	"github.com/gridsingularity/gsy-e-sub001/core/types"
)

type orderOptions struct {
	id            string
	originalPrice *float64
	skipFees      bool
	skipEvent     bool
	attributes    types.Attributes
	requirements  []types.Requirement
	// signed allows the negative energies of balancing offers
	signed bool
}

// OrderOption customises a placement.
type OrderOption func(*orderOptions)

// WithID places the order under a caller chosen id.
func WithID(id string) OrderOption {
	return func(o *orderOptions) {
		o.id = id
	}
}

// WithOriginalPrice records the price the order had before any markup.
func WithOriginalPrice(price float64) OrderOption {
	return func(o *orderOptions) {
		o.originalPrice = &price
	}
}

// WithoutFees stores the price as given.
func WithoutFees() OrderOption {
	return func(o *orderOptions) {
		o.skipFees = true
	}
}

// WithoutEvent does not send ORDER_PLACED, the caller is expected to call
// DispatchPlaced once it is ready for subscribers to see the order.
func WithoutEvent() OrderOption {
	return func(o *orderOptions) {
		o.skipEvent = true
	}
}

func WithAttributes(a types.Attributes) OrderOption {
	return func(o *orderOptions) {
		o.attributes = a
	}
}

func WithRequirements(reqs ...types.Requirement) OrderOption {
	return func(o *orderOptions) {
		o.requirements = reqs
	}
}

type acceptOptions struct {
	energy         *float64
	rate           *float64
	alreadyTracked bool
	balancing      bool
}

// AcceptOption customises an acceptance.
type AcceptOption func(*acceptOptions)

// WithEnergy accepts only part of the order.
func WithEnergy(energy float64) AcceptOption {
	return func(o *acceptOptions) {
		o.energy = &energy
	}
}

// WithTradeRate prices the trade at the given rate instead of the order's
// own rate.
func WithTradeRate(rate float64) AcceptOption {
	return func(o *acceptOptions) {
		o.rate = &rate
	}
}

// AlreadyTracked keeps the trade out of the market statistics.
func AlreadyTracked() AcceptOption {
	return func(o *acceptOptions) {
		o.alreadyTracked = true
	}
}
