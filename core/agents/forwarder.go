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
	"github.com/gridsingularity/gsy-e-sub001/core/types"
	"github.com/gridsingularity/gsy-e-sub001/logging"
	"github.com/gridsingularity/gsy-e-sub001/metrics"
)

// Correspondence pairs an order with its mirror in the adjacent market. It
// is stored under both ids.
type Correspondence struct {
	Source types.Order
	Target types.Order
}

// owner is what a forwarder needs to know about the agent running it.
type owner interface {
	Name() string
	// trader returns the details the agent trades under on behalf of the
	// origin of an order.
	trader(origin types.TraderDetails) types.TraderDetails
	// usable returns false for orders any engine of the agent already
	// forwarded, in either direction.
	usable(id string) bool
}

// forwarder mirrors the orders of one side of a source market into a target
// market and replays the trades of the mirrors back into the source.
//
// A partially traded mirror is settled in two steps: the source order is
// accepted for the traded energy, which splits it, then the source residual
// is linked to the residual the target split left behind. The correspondence
// is forgotten before the source acceptance, so the nested split and trade
// events it raises in the source market are not recorded and nothing is
// forwarded again.
type forwarder struct {
	log    *logging.Logger
	name   string
	owner  owner
	source book
	target book
	minAge int

	currentTick   int
	age           map[string]int
	forwarded     map[string]*Correspondence
	tradeResidual map[string]types.Order
}

func newForwarder(log *logging.Logger, name string, o owner, source, target book, minAge int) *forwarder {
	return &forwarder{
		log:           log,
		name:          name,
		owner:         o,
		source:        source,
		target:        target,
		minAge:        minAge,
		age:           map[string]int{},
		forwarded:     map[string]*Correspondence{},
		tradeResidual: map[string]types.Order{},
	}
}

func (f *forwarder) has(id string) bool {
	_, ok := f.forwarded[id]
	return ok
}

// correspondence returns the correspondence recorded for an order or its mirror.
func (f *forwarder) correspondence(id string) (Correspondence, bool) {
	c, ok := f.forwarded[id]
	if !ok {
		return Correspondence{}, false
	}
	return *c, true
}

func (f *forwarder) eligible(o types.Order) bool {
	if f.has(o.ID) {
		return false
	}
	if o.Trader.Name == f.owner.Name() || !f.owner.usable(o.ID) {
		delete(f.age, o.ID)
		return false
	}
	return true
}

func (f *forwarder) tick(currentTick int) {
	f.currentTick = currentTick
	for _, o := range f.source.live() {
		if _, ok := f.age[o.ID]; !ok {
			f.age[o.ID] = currentTick
		}
	}
	for _, o := range f.source.live() {
		// forwarding can trade or delete orders later in the list
		if _, ok := f.source.get(o.ID); !ok {
			delete(f.age, o.ID)
			continue
		}
		if !f.eligible(o) {
			continue
		}
		if age, ok := f.age[o.ID]; ok && currentTick-age < f.minAge {
			continue
		}
		f.forward(o)
	}
}

func (f *forwarder) forward(o types.Order) {
	mirror, err := f.target.mirror(o, f.owner.trader(o.Trader))
	if err != nil {
		f.log.Debug("order not forwarded",
			logging.String("engine", f.name),
			logging.OrderID(o.ID),
			logging.Error(err),
		)
		return
	}
	c := &Correspondence{Source: o, Target: mirror}
	f.forwarded[o.ID] = c
	f.forwarded[mirror.ID] = c
	metrics.ForwardedCounterInc(f.name, o.Side.String())

	if f.log.IsDebug() {
		f.log.Debug("order forwarded",
			logging.String("engine", f.name),
			logging.Order(o),
			logging.String("mirror", mirror.String()),
		)
	}
	f.target.dispatchPlaced(mirror.ID)
}

func (f *forwarder) forget(c *Correspondence) {
	delete(f.forwarded, c.Source.ID)
	delete(f.forwarded, c.Target.ID)
	delete(f.age, c.Source.ID)
	delete(f.age, c.Target.ID)
}

// onPlaced forwards a new source order straight away when orders do not
// have to age first.
func (f *forwarder) onPlaced(marketID string, o types.Order) {
	if marketID != f.source.marketID() || f.minAge != 0 {
		return
	}
	if _, ok := f.age[o.ID]; !ok {
		f.age[o.ID] = f.currentTick
	}
	live, ok := f.source.get(o.ID)
	if !ok || !f.eligible(live) {
		return
	}
	f.forward(live)
}

func (f *forwarder) onTrade(trade types.Trade) {
	c, ok := f.forwarded[trade.Order.ID]
	if !ok {
		return
	}

	switch {
	case trade.MarketID == f.target.marketID() && trade.Order.ID == c.Target.ID:
		f.settle(c, trade)
	case trade.MarketID == f.source.marketID() && trade.Order.ID == c.Source.ID:
		f.forget(c)
		outcome, err := f.target.remove(c.Target.ID)
		if err != nil {
			f.log.Error("could not delete mirror of traded order",
				logging.String("engine", f.name),
				logging.OrderID(c.Target.ID),
				logging.Error(err),
			)
		}
		f.log.Debug("source order traded by a third party",
			logging.String("engine", f.name),
			logging.OrderID(c.Source.ID),
			logging.String("outcome", outcome.String()),
		)
	default:
		return
	}
	f.checkCleared(c)
}

// settle replays a trade of a mirror into the source market.
func (f *forwarder) settle(c *Correspondence, trade types.Trade) {
	targetResidual, hasTargetResidual := f.tradeResidual[c.Target.ID]
	delete(f.tradeResidual, c.Target.ID)
	sourceAge, hasAge := f.age[c.Source.ID]
	f.forget(c)

	rate := f.target.removeFee(trade.Price, trade.Energy) / trade.Energy
	counterparty := trade.Buyer
	if c.Source.Side == types.SideBuy {
		counterparty = trade.Seller
	}

	sourceTrade, outcome, err := f.source.settle(c.Source.ID, f.owner.trader(counterparty), trade.Energy, rate)
	if err != nil {
		f.log.Panic("could not settle mirrored trade in source market",
			logging.String("engine", f.name),
			logging.MarketID(f.source.marketID()),
			logging.OrderID(c.Source.ID),
			logging.String("mirror-id", c.Target.ID),
			logging.String("trade-id", trade.ID),
			logging.Tick(f.currentTick),
			logging.Error(err),
		)
		return
	}
	if outcome == OutcomeApplied {
		metrics.SettledCounterInc(f.name, c.Source.Side.String())
	}

	var sourceResidual *types.Order
	if outcome == OutcomeApplied && sourceTrade.Residual != nil {
		sourceResidual = sourceTrade.Residual
		if hasAge {
			f.age[sourceResidual.ID] = sourceAge
		}
	}

	switch {
	case sourceResidual != nil && hasTargetResidual:
		linked := &Correspondence{Source: *sourceResidual, Target: targetResidual}
		f.forwarded[sourceResidual.ID] = linked
		f.forwarded[targetResidual.ID] = linked
	case hasTargetResidual:
		if _, err := f.target.remove(targetResidual.ID); err != nil {
			f.log.Error("could not delete orphaned mirror residual",
				logging.String("engine", f.name),
				logging.OrderID(targetResidual.ID),
				logging.Error(err),
			)
		}
	}

	f.log.Debug("mirrored trade settled",
		logging.String("engine", f.name),
		logging.OrderID(c.Source.ID),
		logging.String("outcome", outcome.String()),
		logging.Float64("energy", trade.Energy),
		logging.Float64("rate", rate),
	)
}

func (f *forwarder) checkCleared(c *Correspondence) {
	if f.has(c.Source.ID) || f.has(c.Target.ID) {
		f.log.Panic("traded correspondence still recorded",
			logging.String("engine", f.name),
			logging.OrderID(c.Source.ID),
			logging.String("mirror-id", c.Target.ID),
			logging.Tick(f.currentTick),
		)
	}
}

func (f *forwarder) onSplit(marketID string, original, residual types.Order) {
	switch marketID {
	case f.target.marketID():
		if original.Trader.Name == f.owner.Name() && f.has(original.ID) {
			f.tradeResidual[original.ID] = residual
		}
	case f.source.marketID():
		c, ok := f.forwarded[original.ID]
		if !ok || c.Source.ID != original.ID {
			return
		}
		if age, ok := f.age[original.ID]; ok {
			f.age[residual.ID] = age
		}
		f.forward(residual)
	}
}

func (f *forwarder) onDeleted(marketID string, o types.Order) {
	if marketID == f.source.marketID() {
		delete(f.age, o.ID)
	}
	c, ok := f.forwarded[o.ID]
	if !ok {
		return
	}
	f.forget(c)
	if marketID == f.source.marketID() && c.Source.ID == o.ID {
		outcome, err := f.target.remove(c.Target.ID)
		if err != nil {
			f.log.Error("could not delete mirror of cancelled order",
				logging.String("engine", f.name),
				logging.OrderID(c.Target.ID),
				logging.Error(err),
			)
			return
		}
		f.log.Debug("mirror of cancelled order deleted",
			logging.String("engine", f.name),
			logging.OrderID(c.Target.ID),
			logging.String("outcome", outcome.String()),
		)
	}
}
