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

package types

// Requirement is one alternative set of conditions an order puts on its
// counter-order. Empty fields are unconstrained.
type Requirement struct {
	// TradingPartners lists ids (immediate or origin) the order may trade with.
	TradingPartners []string
	// EnergyTypes lists the energy types a bid accepts. Only bids support it.
	EnergyTypes []string
}

func (r Requirement) Clone() Requirement {
	c := Requirement{}
	if r.TradingPartners != nil {
		c.TradingPartners = append([]string{}, r.TradingPartners...)
	}
	if r.EnergyTypes != nil {
		c.EnergyTypes = append([]string{}, r.EnergyTypes...)
	}
	return c
}

func (r Requirement) IsEmpty() bool {
	return len(r.TradingPartners) == 0 && len(r.EnergyTypes) == 0
}
