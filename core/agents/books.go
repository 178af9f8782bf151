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

package agents

import (
	"time"

	"github.com/gridsingularity/gsy-e-sub001/core/fee"
	"github.com/gridsingularity/gsy-e-sub001/core/market"
	"github.com/gridsingularity/gsy-e-sub001/core/types"

	"github.com/pkg/errors"
)

// Market is the part of a market ledger the agents use.
type Market interface {
	ID() string
	Name() string
	TimeSlot() time.Time
	Type() types.MarketType
	Fees() fee.Grid
	IsReadOnly() bool
	IsTradable() bool
	Orders(side types.Side) []types.Order
	Order(side types.Side, id string) (types.Order, bool)
	Place(side types.Side, price, energy float64, trader types.TraderDetails, opts ...market.OrderOption) (types.Order, error)
	DispatchPlaced(side types.Side, id string)
	Cancel(side types.Side, id string) error
	Accept(side types.Side, id string, counterparty types.TraderDetails, opts ...market.AcceptOption) (types.Trade, error)
	Match() int
}

// BalancingMarket is the part of a balancing market the agents use.
type BalancingMarket interface {
	ID() string
	Name() string
	TimeSlot() time.Time
	IsReadOnly() bool
	Orders(side types.Side) []types.Order
	Order(side types.Side, id string) (types.Order, bool)
	DispatchPlaced(side types.Side, id string)
	PlaceBalancingOffer(price, energy float64, seller types.TraderDetails, fromAgent bool, opts ...market.OrderOption) (types.Order, error)
	CancelBalancingOffer(id string) error
	AcceptBalancingOffer(id string, buyer types.TraderDetails, energy float64) (types.Trade, error)
	UnmatchedUpward() float64
	UnmatchedDownward() float64
	SetUnmatched(upward, downward float64)
}

// Outcome tells whether a call on an adjacent market changed it or found
// the order already gone.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	// OutcomeAlreadyResolved means the order had already left the book,
	// traded or cancelled through another path.
	OutcomeAlreadyResolved
)

func (o Outcome) String() string {
	if o == OutcomeApplied {
		return "applied"
	}
	return "already-resolved"
}

// outcomeOf turns the not found error of a ledger into an explicit outcome.
func outcomeOf(err error) (Outcome, error) {
	switch {
	case err == nil:
		return OutcomeApplied, nil
	case errors.Is(err, types.ErrOrderNotFound):
		return OutcomeAlreadyResolved, nil
	default:
		return OutcomeApplied, err
	}
}

// book is one side of one market as seen by a forwarder.
type book interface {
	marketID() string
	side() types.Side
	live() []types.Order
	get(id string) (types.Order, bool)
	// mirror places a copy of src owned by owner without dispatching the
	// placement event.
	mirror(src types.Order, owner types.TraderDetails) (types.Order, error)
	dispatchPlaced(id string)
	// settle accepts energy of a live order at rate.
	settle(id string, counterparty types.TraderDetails, energy, rate float64) (types.Trade, Outcome, error)
	remove(id string) (Outcome, error)
	// removeFee strips the fee this market added to a mirrored price.
	removeFee(price, energy float64) float64
}

type sideBook struct {
	m Market
	s types.Side
}

func newSideBook(m Market, side types.Side) *sideBook {
	return &sideBook{m: m, s: side}
}

func (b *sideBook) marketID() string                  { return b.m.ID() }
func (b *sideBook) side() types.Side                  { return b.s }
func (b *sideBook) live() []types.Order               { return b.m.Orders(b.s) }
func (b *sideBook) get(id string) (types.Order, bool) { return b.m.Order(b.s, id) }
func (b *sideBook) dispatchPlaced(id string)          { b.m.DispatchPlaced(b.s, id) }

func (b *sideBook) mirror(src types.Order, owner types.TraderDetails) (types.Order, error) {
	return b.m.Place(b.s, src.Price, src.Energy, owner,
		market.WithOriginalPrice(src.OriginalPrice),
		market.WithAttributes(src.Attributes),
		market.WithRequirements(src.Requirements...),
		market.WithoutEvent(),
	)
}

func (b *sideBook) settle(id string, counterparty types.TraderDetails, energy, rate float64) (types.Trade, Outcome, error) {
	trade, err := b.m.Accept(b.s, id, counterparty, market.WithEnergy(energy), market.WithTradeRate(rate))
	outcome, err := outcomeOf(err)
	return trade, outcome, err
}

func (b *sideBook) remove(id string) (Outcome, error) {
	return outcomeOf(b.m.Cancel(b.s, id))
}

func (b *sideBook) removeFee(price, energy float64) float64 {
	return b.m.Fees().Remove(price, energy)
}

// balancingBook forwards signed balancing offers, no fee is applied.
type balancingBook struct {
	m BalancingMarket
}

func newBalancingBook(m BalancingMarket) *balancingBook {
	return &balancingBook{m: m}
}

func (b *balancingBook) marketID() string    { return b.m.ID() }
func (b *balancingBook) side() types.Side    { return types.SideSell }
func (b *balancingBook) live() []types.Order { return b.m.Orders(types.SideSell) }
func (b *balancingBook) get(id string) (types.Order, bool) {
	return b.m.Order(types.SideSell, id)
}
func (b *balancingBook) dispatchPlaced(id string) { b.m.DispatchPlaced(types.SideSell, id) }

func (b *balancingBook) mirror(src types.Order, owner types.TraderDetails) (types.Order, error) {
	return b.m.PlaceBalancingOffer(src.Price, src.Energy, owner, true,
		market.WithOriginalPrice(src.OriginalPrice),
		market.WithoutEvent(),
	)
}

func (b *balancingBook) settle(id string, counterparty types.TraderDetails, energy, _ float64) (types.Trade, Outcome, error) {
	trade, err := b.m.AcceptBalancingOffer(id, counterparty, energy)
	outcome, err := outcomeOf(err)
	return trade, outcome, err
}

func (b *balancingBook) remove(id string) (Outcome, error) {
	return outcomeOf(b.m.CancelBalancingOffer(id))
}

func (b *balancingBook) removeFee(price, _ float64) float64 {
	return price
}
