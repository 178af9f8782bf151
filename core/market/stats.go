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
	"sort"

	"github.com/gridsingularity/gsy-e-sub001/core/types"
	"github.com/gridsingularity/gsy-e-sub001/libs/num"

	"github.com/shopspring/decimal"
)

// Stats accumulates the trades of a market. Amounts are kept as decimals so
// long runs of small trades do not drift.
type Stats struct {
	trades     int
	minRate    decimal.Decimal
	maxRate    decimal.Decimal
	totalPrice decimal.Decimal
	total      decimal.Decimal
	feeRevenue decimal.Decimal

	traded       map[string]decimal.Decimal
	bought       map[string]decimal.Decimal
	sold         map[string]decimal.Decimal
	spent        map[string]decimal.Decimal
	earned       map[string]decimal.Decimal
	byCapability map[types.Capability]decimal.Decimal
}

func newStats() *Stats {
	return &Stats{
		traded:       map[string]decimal.Decimal{},
		bought:       map[string]decimal.Decimal{},
		sold:         map[string]decimal.Decimal{},
		spent:        map[string]decimal.Decimal{},
		earned:       map[string]decimal.Decimal{},
		byCapability: map[types.Capability]decimal.Decimal{},
	}
}

func (s *Stats) record(t types.Trade) {
	energy := num.Decimal(t.Energy)
	price := num.Decimal(t.Price)
	fee := num.Decimal(t.FeePrice)
	rate := num.Decimal(t.Rate())

	if s.trades == 0 || rate.LessThan(s.minRate) {
		s.minRate = rate
	}
	if s.trades == 0 || rate.GreaterThan(s.maxRate) {
		s.maxRate = rate
	}
	s.trades++
	s.total = s.total.Add(energy)
	s.totalPrice = s.totalPrice.Add(price)
	s.feeRevenue = s.feeRevenue.Add(fee)

	seller, buyer := t.Seller.Name, t.Buyer.Name
	s.traded[seller] = s.traded[seller].Add(energy)
	s.traded[buyer] = s.traded[buyer].Sub(energy)
	s.sold[seller] = s.sold[seller].Add(energy)
	s.bought[buyer] = s.bought[buyer].Add(energy)
	s.earned[seller] = s.earned[seller].Add(price.Sub(fee))
	s.spent[buyer] = s.spent[buyer].Add(price)

	for _, cn := range []types.Capability{
		types.CapabilityConsumer,
		types.CapabilityProducer,
		types.CapabilityStorage,
		types.CapabilityAgent,
	} {
		if t.Seller.Capabilities.Has(cn) {
			s.byCapability[cn] = s.byCapability[cn].Add(energy)
		}
		if t.Buyer.Capabilities.Has(cn) && !t.Seller.Capabilities.Has(cn) {
			s.byCapability[cn] = s.byCapability[cn].Add(energy)
		}
	}
}

// TradeCount is the number of recorded trades.
func (s *Stats) TradeCount() int { return s.trades }

func (s *Stats) MinRate() float64 { return num.Float(s.minRate) }
func (s *Stats) MaxRate() float64 { return num.Float(s.maxRate) }

// AvgRate is the volume weighted average trade rate.
func (s *Stats) AvgRate() float64 {
	if s.total.IsZero() {
		return 0
	}
	return num.Float(s.totalPrice.Div(s.total))
}

func (s *Stats) TotalTraded() float64 { return num.Float(s.total) }
func (s *Stats) FeeRevenue() float64  { return num.Float(s.feeRevenue) }

// TradedEnergy is the signed energy of an actor: sold energy counts
// positive, bought energy negative.
func (s *Stats) TradedEnergy(name string) float64 { return num.Float(s.traded[name]) }

func (s *Stats) BoughtEnergy(name string) float64 { return num.Float(s.bought[name]) }
func (s *Stats) SoldEnergy(name string) float64   { return num.Float(s.sold[name]) }
func (s *Stats) TotalSpent(name string) float64   { return num.Float(s.spent[name]) }
func (s *Stats) TotalEarned(name string) float64  { return num.Float(s.earned[name]) }

// EnergyByCapability is the energy traded by participants carrying c, each
// trade counted once even if both sides carry it.
func (s *Stats) EnergyByCapability(c types.Capability) float64 {
	return num.Float(s.byCapability[c])
}

// IsBalanced returns true if the signed traded energies of all actors sum
// to zero.
func (s *Stats) IsBalanced() bool {
	sum := decimal.Zero
	for _, v := range s.traded {
		sum = sum.Add(v)
	}
	return num.IsZero(num.Float(sum))
}

// Actors returns the names of every actor that traded, sorted.
func (s *Stats) Actors() []string {
	names := make([]string, 0, len(s.traded))
	for n := range s.traded {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// StatsSummary is a value copy of the statistics, used in snapshots.
type StatsSummary struct {
	Trades       int                `json:"trades"`
	MinRate      float64            `json:"min_rate"`
	MaxRate      float64            `json:"max_rate"`
	AvgRate      float64            `json:"avg_rate"`
	TotalTraded  float64            `json:"total_traded"`
	FeeRevenue   float64            `json:"fee_revenue"`
	TradedEnergy map[string]float64 `json:"traded_energy"`
}

func (s *Stats) Summary() StatsSummary {
	sum := StatsSummary{
		Trades:       s.trades,
		MinRate:      s.MinRate(),
		MaxRate:      s.MaxRate(),
		AvgRate:      s.AvgRate(),
		TotalTraded:  s.TotalTraded(),
		FeeRevenue:   s.FeeRevenue(),
		TradedEnergy: make(map[string]float64, len(s.traded)),
	}
	for n, v := range s.traded {
		sum.TradedEnergy[n] = num.Float(v)
	}
	return sum
}
