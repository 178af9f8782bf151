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

// Trade carries a snapshot of a trade created in a market.
type Trade struct {
	*Base
	t types.Trade
}

func NewTradeEvent(t types.Trade) *Trade {
	return &Trade{
		Base: newBase(TradeEvent),
		t:    cloneTrade(t),
	}
}

func (t Trade) MarketID() string {
	return t.t.MarketID
}

// Trade returns a copy of the trade.
func (t Trade) Trade() types.Trade {
	return cloneTrade(t.t)
}

func (t Trade) IsParty(name string) bool {
	return t.t.Involves(name)
}
