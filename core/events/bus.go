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
	"github.com/gridsingularity/gsy-e-sub001/core/types"
)

type Type int

// MarketEvent is implemented by every event emitted by a market ledger.
type MarketEvent interface {
	Event
	MarketID() string
}

// Base common denominator all events share.
type Base struct {
	seq uint64
	et  Type
}

// Event - the base event interface type.
type Event interface {
	Type() Type
	Sequence() uint64
	SetSequenceID(s uint64)
}

const (
	// All event type -> used by subscribers to just receive all events, has no actual corresponding event payload.
	All Type = iota
	// OrderPlacedEvent fires once an order is inserted in a market.
	OrderPlacedEvent
	// OrderDeletedEvent fires once an order is cancelled.
	OrderDeletedEvent
	// OrderSplitEvent fires when a partial acceptance splits an order, before
	// the matching TradeEvent.
	OrderSplitEvent
	// TradeEvent fires once (part of) an order is accepted.
	TradeEvent
	// MarketCycleEvent fires once the markets of a new slot exist.
	MarketCycleEvent
	// TickEvent fires at every tick of the simulation.
	TickEvent
)

var eventStrings = map[Type]string{
	All:               "ALL",
	OrderPlacedEvent:  "ORDER_PLACED",
	OrderDeletedEvent: "ORDER_DELETED",
	OrderSplitEvent:   "ORDER_SPLIT",
	TradeEvent:        "TRADE",
	MarketCycleEvent:  "MARKET_CYCLE",
	TickEvent:         "TICK",
}

func newBase(t Type) *Base {
	return &Base{
		et: t,
	}
}

// Type returns the event type.
func (b Base) Type() Type {
	return b.et
}

// Sequence returns the position of the event in the broker stream.
func (b Base) Sequence() uint64 {
	return b.seq
}

// SetSequenceID sets the sequence number once, later calls are ignored.
func (b *Base) SetSequenceID(s uint64) {
	if b.seq != 0 {
		return
	}
	b.seq = s
}

// String get string representation of event type.
func (t Type) String() string {
	s, ok := eventStrings[t]
	if !ok {
		return "UNKNOWN EVENT"
	}
	return s
}

// MarketTypes returns the types emitted by market ledgers.
func MarketTypes() []Type {
	return []Type{
		OrderPlacedEvent,
		OrderDeletedEvent,
		OrderSplitEvent,
		TradeEvent,
	}
}

func cloneTrade(t types.Trade) types.Trade {
	c := t
	c.Order = t.Order.Clone()
	if t.Residual != nil {
		r := t.Residual.Clone()
		c.Residual = &r
	}
	return c
}
