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
	"time"

	"github.com/gridsingularity/gsy-e-sub001/core/fee"
	"github.com/gridsingularity/gsy-e-sub001/core/types"
	"github.com/gridsingularity/gsy-e-sub001/libs/num"
	"github.com/gridsingularity/gsy-e-sub001/logging"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DeviceRegistry lists the devices allowed to place balancing offers
// directly.
type DeviceRegistry map[string]struct{}

func NewDeviceRegistry(names ...string) DeviceRegistry {
	r := make(DeviceRegistry, len(names))
	for _, n := range names {
		r[n] = struct{}{}
	}
	return r
}

func (r DeviceRegistry) Contains(name string) bool {
	_, ok := r[name]
	return ok
}

// BalancingMarket is a one sided market of signed balancing offers: a
// positive energy offers upward regulation, a negative energy downward
// regulation. Only balancing offers can be placed on it.
type BalancingMarket struct {
	*Market
	registry DeviceRegistry

	unmatchedUpward   float64
	unmatchedDownward float64

	supplyPrice  decimal.Decimal
	supplyEnergy decimal.Decimal
	demandPrice  decimal.Decimal
	demandEnergy decimal.Decimal
}

// NewBalancing returns the balancing market of an area for a slot.
func NewBalancing(
	log *logging.Logger,
	cfg Config,
	id, name string,
	timeSlot time.Time,
	fees fee.Grid,
	broker Broker,
	idgen IDGenerator,
	registry DeviceRegistry,
) *BalancingMarket {
	cfg.Type = types.MarketTypeOneSided
	return &BalancingMarket{
		Market:   New(log, cfg, id, name, timeSlot, fees, broker, idgen),
		registry: registry,
	}
}

// PlaceOffer always fails, use PlaceBalancingOffer.
func (b *BalancingMarket) PlaceOffer(float64, float64, types.TraderDetails, ...OrderOption) (types.Order, error) {
	return types.Order{}, errors.Wrapf(types.ErrUnsupportedOrder, "plain offer on balancing market %s", b.id)
}

// PlaceBid always fails, balancing markets are one sided.
func (b *BalancingMarket) PlaceBid(float64, float64, types.TraderDetails, ...OrderOption) (types.Order, error) {
	return types.Order{}, errors.Wrapf(types.ErrUnsupportedOrder, "bid on balancing market %s", b.id)
}

// PlaceBalancingOffer places a signed balancing offer. Unless fromAgent is
// set the seller has to be a registered device. No grid fee is applied.
func (b *BalancingMarket) PlaceBalancingOffer(
	price, energy float64,
	seller types.TraderDetails,
	fromAgent bool,
	opts ...OrderOption,
) (types.Order, error) {
	if !fromAgent && !b.registry.Contains(seller.Name) {
		return types.Order{}, errors.Wrapf(types.ErrDeviceNotInRegistry, "device %s", seller.Name)
	}
	opts = append(opts, WithoutFees(), func(o *orderOptions) { o.signed = true })
	return b.place(types.SideSell, price, energy, seller, opts...)
}

// CancelBalancingOffer removes a live balancing offer.
func (b *BalancingMarket) CancelBalancingOffer(id string) error {
	return b.Cancel(types.SideSell, id)
}

// AcceptBalancingOffer accepts energy of a balancing offer. The energy has
// to carry the same sign as the offer.
func (b *BalancingMarket) AcceptBalancingOffer(id string, buyer types.TraderDetails, energy float64) (types.Trade, error) {
	trade, err := b.accept(types.SideSell, id, buyer, acceptOptions{energy: &energy, balancing: true})
	if err != nil {
		return trade, err
	}
	switch {
	case trade.Energy > 0:
		b.supplyPrice = b.supplyPrice.Add(num.Decimal(trade.Price))
		b.supplyEnergy = b.supplyEnergy.Add(num.Decimal(trade.Energy))
	case trade.Energy < 0:
		b.demandPrice = b.demandPrice.Add(num.Decimal(trade.Price))
		b.demandEnergy = b.demandEnergy.Add(num.Decimal(-trade.Energy))
	}
	return trade, nil
}

// SetUnmatched records the imbalance the balancing agent has to cover.
func (b *BalancingMarket) SetUnmatched(upward, downward float64) {
	b.unmatchedUpward = upward
	b.unmatchedDownward = downward
}

func (b *BalancingMarket) UnmatchedUpward() float64   { return b.unmatchedUpward }
func (b *BalancingMarket) UnmatchedDownward() float64 { return b.unmatchedDownward }

// AvgSupplyRate is the average rate of upward balancing trades.
func (b *BalancingMarket) AvgSupplyRate() float64 {
	if b.supplyEnergy.IsZero() {
		return 0
	}
	return num.Float(b.supplyPrice.Div(b.supplyEnergy).Round(4))
}

// AvgDemandRate is the average rate of downward balancing trades.
func (b *BalancingMarket) AvgDemandRate() float64 {
	if b.demandEnergy.IsZero() {
		return 0
	}
	return num.Float(b.demandPrice.Div(b.demandEnergy).Round(4))
}
