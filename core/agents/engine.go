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
	"github.com/gridsingularity/gsy-e-sub001/core/events"
	"github.com/gridsingularity/gsy-e-sub001/core/types"
	"github.com/gridsingularity/gsy-e-sub001/logging"
)

// ForwardingEngine mirrors the orders of a source market into a target
// market, one direction of a market agent. Offers are always forwarded, bids
// only when both markets are two sided.
type ForwardingEngine struct {
	name      string
	offers    *forwarder
	bids      *forwarder
	immediate bool
	// match runs the matching of the target market, nil if the target does
	// not match by itself
	match func() int
}

func newForwardingEngine(log *logging.Logger, name string, o owner, source, target Market, cfg Config) *ForwardingEngine {
	e := &ForwardingEngine{
		name:   name,
		offers: newForwarder(log, name, o, newSideBook(source, types.SideSell), newSideBook(target, types.SideSell), cfg.MinOfferAge),
	}
	twoSided := source.Type().IsTwoSided() && target.Type().IsTwoSided()
	if twoSided {
		e.bids = newForwarder(log, name, o, newSideBook(source, types.SideBuy), newSideBook(target, types.SideBuy), cfg.MinBidAge)
		e.immediate = true
	}
	e.match = func() int {
		if !target.IsTradable() {
			return 0
		}
		return target.Match()
	}
	return e
}

func newBalancingEngine(log *logging.Logger, name string, o owner, source, target BalancingMarket, cfg Config) *ForwardingEngine {
	return &ForwardingEngine{
		name:   name,
		offers: newForwarder(log, name, o, newBalancingBook(source), newBalancingBook(target), cfg.MinOfferAge),
	}
}

func (e *ForwardingEngine) Name() string {
	return e.name
}

func (e *ForwardingEngine) forwarders() []*forwarder {
	if e.bids == nil {
		return []*forwarder{e.offers}
	}
	return []*forwarder{e.offers, e.bids}
}

func (e *ForwardingEngine) forwarderFor(side types.Side) *forwarder {
	if side == types.SideBuy {
		return e.bids
	}
	return e.offers
}

// Tick forwards every source order old enough, then lets the target market
// match what it received.
func (e *ForwardingEngine) Tick(currentTick int) {
	for _, f := range e.forwarders() {
		f.tick(currentTick)
	}
	if e.match != nil {
		e.match()
	}
}

// Has returns true if id is an order or a mirror recorded by the engine.
func (e *ForwardingEngine) Has(id string) bool {
	for _, f := range e.forwarders() {
		if f.has(id) {
			return true
		}
	}
	return false
}

// Correspondence returns the pairing recorded for an order or its mirror.
func (e *ForwardingEngine) Correspondence(id string) (Correspondence, bool) {
	for _, f := range e.forwarders() {
		if c, ok := f.correspondence(id); ok {
			return c, true
		}
	}
	return Correspondence{}, false
}

// ForwardedIDs returns every id recorded by the engine, sources and mirrors.
func (e *ForwardingEngine) ForwardedIDs() []string {
	ids := []string{}
	for _, f := range e.forwarders() {
		for id := range f.forwarded {
			ids = append(ids, id)
		}
	}
	return ids
}

func (e *ForwardingEngine) push(evt events.Event) {
	switch et := evt.(type) {
	case *events.OrderPlaced:
		if !e.immediate {
			return
		}
		o := et.Order()
		if f := e.forwarderFor(o.Side); f != nil {
			f.onPlaced(et.MarketID(), o)
		}
	case *events.OrderDeleted:
		o := et.Order()
		if f := e.forwarderFor(o.Side); f != nil {
			f.onDeleted(et.MarketID(), o)
		}
	case *events.OrderSplit:
		original := et.Original()
		if f := e.forwarderFor(original.Side); f != nil {
			f.onSplit(et.MarketID(), original, et.Residual())
		}
	case *events.Trade:
		t := et.Trade()
		if f := e.forwarderFor(t.Order.Side); f != nil {
			f.onTrade(t)
		}
	}
}
