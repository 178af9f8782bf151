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

import "time"

// MarketCycle announces the markets of a new slot.
type MarketCycle struct {
	*Base
	slot time.Time
}

func NewMarketCycle(slot time.Time) *MarketCycle {
	return &MarketCycle{
		Base: newBase(MarketCycleEvent),
		slot: slot,
	}
}

func (m MarketCycle) Slot() time.Time {
	return m.slot
}

// Tick announces a simulation tick inside the current slot.
type Tick struct {
	*Base
	slot time.Time
	tick int
}

func NewTick(slot time.Time, tick int) *Tick {
	return &Tick{
		Base: newBase(TickEvent),
		slot: slot,
		tick: tick,
	}
}

func (t Tick) Slot() time.Time {
	return t.slot
}

func (t Tick) Tick() int {
	return t.tick
}
