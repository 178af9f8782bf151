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

package events_test

import (
	"testing"

	"github.com/gridsingularity/gsy-e-sub001/core/events"
	"github.com/gridsingularity/gsy-e-sub001/core/types"

	"github.com/stretchr/testify/assert"
)

func TestOrderEventIsASnapshot(t *testing.T) {
	o := types.NewOffer(10, 1, types.NewTrader("pv", "pv-id", types.CapabilityProducer))
	o.ID = "offer-1"
	o.Requirements = []types.Requirement{{TradingPartners: []string{"load-id"}}}

	evt := events.NewOrderPlaced("market-1", o)
	o.Price = 99
	o.Requirements[0].TradingPartners[0] = "someone-else"

	got := evt.Order()
	assert.Equal(t, 10.0, got.Price)
	assert.Equal(t, "load-id", got.Requirements[0].TradingPartners[0])

	got.Requirements[0].TradingPartners[0] = "mutated"
	assert.Equal(t, "load-id", evt.Order().Requirements[0].TradingPartners[0])
	assert.Equal(t, "market-1", evt.MarketID())
	assert.Equal(t, events.OrderPlacedEvent, evt.Type())
}

func TestTradeEventCopiesResidual(t *testing.T) {
	residual := types.NewOffer(5, 1, types.NewTrader("pv", "pv-id", 0))
	trade := types.Trade{ID: "trade-1", MarketID: "market-1", Energy: 1, Price: 5, Residual: &residual}

	evt := events.NewTradeEvent(trade)
	residual.Energy = 42

	assert.Equal(t, 1.0, evt.Trade().Residual.Energy)
	assert.Equal(t, "market-1", evt.MarketID())
	assert.Equal(t, "TRADE", evt.Type().String())
}

func TestSequenceIsSetOnce(t *testing.T) {
	evt := events.NewTick(types.Order{}.TimeSlot, 3)
	evt.SetSequenceID(7)
	evt.SetSequenceID(9)
	assert.Equal(t, uint64(7), evt.Sequence())
	assert.Equal(t, 3, evt.Tick())
}
