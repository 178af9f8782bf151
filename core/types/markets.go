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

import (
	"fmt"
	"strings"
)

// MarketType selects how orders meet in a market.
type MarketType int

const (
	// MarketTypeOneSided markets only hold offers, buyers accept them directly.
	MarketTypeOneSided MarketType = iota
	// MarketTypePayAsBid markets hold bids and offers matched at the bid rate.
	MarketTypePayAsBid
	// MarketTypePayAsClear markets hold bids and offers matched at a single
	// clearing rate.
	MarketTypePayAsClear
)

// ParseMarketType parses the configuration name of a market type.
func ParseMarketType(s string) (MarketType, error) {
	switch strings.ToLower(s) {
	case "one-sided", "onesided":
		return MarketTypeOneSided, nil
	case "pay-as-bid", "payasbid":
		return MarketTypePayAsBid, nil
	case "pay-as-clear", "payasclear":
		return MarketTypePayAsClear, nil
	default:
		return MarketTypeOneSided, fmt.Errorf("market type \"%s\" is not supported", s)
	}
}

func (m MarketType) String() string {
	switch m {
	case MarketTypeOneSided:
		return "one-sided"
	case MarketTypePayAsBid:
		return "pay-as-bid"
	case MarketTypePayAsClear:
		return "pay-as-clear"
	default:
		return "unknown"
	}
}

// IsTwoSided returns true if the market holds bids.
func (m MarketType) IsTwoSided() bool {
	return m == MarketTypePayAsBid || m == MarketTypePayAsClear
}

// UnmarshalText lets the market type be written by name in toml files.
func (m *MarketType) UnmarshalText(text []byte) error {
	var err error
	*m, err = ParseMarketType(string(text))
	return err
}

func (m *MarketType) UnmarshalFlag(s string) error {
	return m.UnmarshalText([]byte(s))
}

func (m MarketType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}
