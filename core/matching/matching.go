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

package matching

import (
	"sort"

	"github.com/gridsingularity/gsy-e-sub001/core/types"

	"github.com/pkg/errors"
)

// ErrNoMatchingAlgorithm signals a market type without a matching algorithm.
var ErrNoMatchingAlgorithm = errors.New("market type has no matching algorithm")

// BidOfferMatch is a recommendation to trade SelectedEnergy of Bid against
// Offer at ClearingRate per kWh. Bid and Offer are snapshots of the orders
// at the time the recommendation was computed.
type BidOfferMatch struct {
	Bid            types.Order
	Offer          types.Order
	SelectedEnergy float64
	ClearingRate   float64
}

// Algorithm proposes pairings over a snapshot of the bids and offers of one
// market. Implementations are pure: they never touch a ledger.
type Algorithm interface {
	Name() string
	Recommend(bids, offers []types.Order) []BidOfferMatch
}

// New returns the matching algorithm of a two sided market type.
func New(mt types.MarketType) (Algorithm, error) {
	switch mt {
	case types.MarketTypePayAsBid:
		return PayAsBid{}, nil
	case types.MarketTypePayAsClear:
		return PayAsClear{}, nil
	default:
		return nil, errors.Wrapf(ErrNoMatchingAlgorithm, "market type %s", mt)
	}
}

// sortByRate returns a copy of the orders sorted by rate, stable so orders
// with the same rate keep their arrival order.
func sortByRate(orders []types.Order, descending bool) []types.Order {
	sorted := make([]types.Order, len(orders))
	copy(sorted, orders)
	sort.SliceStable(sorted, func(i, j int) bool {
		if descending {
			return sorted[i].EnergyRate() > sorted[j].EnergyRate()
		}
		return sorted[i].EnergyRate() < sorted[j].EnergyRate()
	})
	return sorted
}

func isSelfTrade(bid, offer types.Order) bool {
	return bid.Trader.Name == offer.Trader.Name
}
