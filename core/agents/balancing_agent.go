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
	"fmt"
	"math"

	"github.com/gridsingularity/gsy-e-sub001/core/events"
	"github.com/gridsingularity/gsy-e-sub001/core/types"
	"github.com/gridsingularity/gsy-e-sub001/logging"
)

// BalancingAgent forwards balancing offers between the balancing markets of
// an edge and buys balancing energy in the lower one to cover its
// unmatched imbalance.
type BalancingAgent struct {
	*agent
	lower  BalancingMarket
	higher BalancingMarket
	// spotAgent is the name of the market agent of the same edge, whose
	// spot purchases trigger balancing purchases.
	spotAgent string
	ratio     float64
}

// NewBalancingAgent returns the balancing agent of an edge.
func NewBalancingAgent(
	log *logging.Logger,
	cfg Config,
	name, traderID, spotAgent string,
	lower, higher BalancingMarket,
) *BalancingAgent {
	a := newAgent(log, cfg, name, traderID, lower.ID(), higher.ID())
	a.up = newBalancingEngine(a.log, fmt.Sprintf("%s %s->%s", name, lower.Name(), higher.Name()), a, lower, higher, cfg)
	a.down = newBalancingEngine(a.log, fmt.Sprintf("%s %s->%s", name, higher.Name(), lower.Name()), a, higher, lower, cfg)
	return &BalancingAgent{
		agent:     a,
		lower:     lower,
		higher:    higher,
		spotAgent: spotAgent,
		ratio:     cfg.BalancingSpotTradeRatio,
	}
}

func (b *BalancingAgent) Lower() BalancingMarket  { return b.lower }
func (b *BalancingAgent) Higher() BalancingMarket { return b.higher }

// Tick runs both engines then covers the unmatched energy of the lower
// market.
func (b *BalancingAgent) Tick(currentTick int) {
	b.tickEngines(currentTick)
	if b.lower.IsReadOnly() {
		return
	}
	up, down := b.lower.UnmatchedUpward(), b.lower.UnmatchedDownward()
	if up > 0 || down > 0 {
		b.trade(up, down)
	}
}

// Push receives the events of the broker. Besides its own balancing markets
// the agent watches the spot trades bought by the spot agent of its edge.
func (b *BalancingAgent) Push(evts ...events.Event) {
	for _, evt := range evts {
		if te, ok := evt.(*events.Trade); ok {
			b.onSpotTrade(te.Trade())
		}
		b.dispatch(evt)
	}
}

func (b *BalancingAgent) onSpotTrade(t types.Trade) {
	if t.Balancing || t.Buyer.Name != b.spotAgent || b.spotAgent == "" {
		return
	}
	if !t.Order.TimeSlot.Equal(b.lower.TimeSlot()) || b.lower.IsReadOnly() {
		return
	}
	energy := math.Abs(t.Energy) * b.ratio
	b.trade(energy+b.lower.UnmatchedUpward(), energy+b.lower.UnmatchedDownward())
}

// trade walks the lower balancing offers by arrival and accepts enough of
// them to cover up (positive offers) and down (negative offers).
func (b *BalancingAgent) trade(up, down float64) {
	for _, offer := range b.lower.Orders(types.SideSell) {
		live, ok := b.lower.Order(types.SideSell, offer.ID)
		if !ok {
			continue
		}
		switch {
		case live.Energy > types.FloatingPointTolerance && up > types.FloatingPointTolerance:
			if t, ok := b.accept(live, up); ok {
				up -= math.Abs(t.Energy)
			}
		case live.Energy < types.FloatingPointTolerance && down > types.FloatingPointTolerance:
			if t, ok := b.accept(live, -down); ok {
				down -= math.Abs(t.Energy)
			}
		}
	}
	b.lower.SetUnmatched(math.Max(up, 0), math.Max(down, 0))
}

func (b *BalancingAgent) accept(offer types.Order, target float64) (types.Trade, bool) {
	buyer := types.TraderDetails{
		Name:         b.name,
		ID:           b.traderID,
		Origin:       b.name,
		OriginID:     b.traderID,
		Capabilities: types.CapabilityAgent,
	}
	if offer.Trader.Name == b.name {
		buyer.Name = b.name + " Reserve"
		buyer.Origin = buyer.Name
	}

	energy := offer.Energy
	if math.Abs(offer.Energy) > math.Abs(target) {
		energy = target
	}
	trade, err := b.lower.AcceptBalancingOffer(offer.ID, buyer, energy)
	if outcome, err := outcomeOf(err); err != nil || outcome == OutcomeAlreadyResolved {
		b.log.Debug("balancing offer not accepted",
			logging.OrderID(offer.ID),
			logging.String("outcome", outcome.String()),
			logging.Error(err),
		)
		return trade, false
	}
	b.log.Debug("balancing energy bought",
		logging.Trade(trade),
	)
	return trade, true
}

func (b *BalancingAgent) String() string {
	return fmt.Sprintf("BalancingAgent{%s %s}", b.name, b.lower.TimeSlot().Format("15:04"))
}
