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
	"math"

	"github.com/gridsingularity/gsy-e-sub001/core/types"
)

// PayAsBid pairs the cheapest offers with the most expensive bids, every
// pair trading at the rate the buyer posted.
type PayAsBid struct{}

func (PayAsBid) Name() string {
	return "pay-as-bid"
}

// Recommend walks offers cheapest first and gives each the most expensive
// bid still unconsumed in this pass that covers its rate. Each bid and each
// offer is used at most once per pass.
func (PayAsBid) Recommend(bids, offers []types.Order) []BidOfferMatch {
	sortedOffers := sortByRate(offers, false)
	sortedBids := sortByRate(bids, true)

	consumed := make(map[string]struct{}, len(sortedBids))
	recommendations := []BidOfferMatch{}
	for _, offer := range sortedOffers {
		for _, bid := range sortedBids {
			if _, ok := consumed[bid.ID]; ok {
				continue
			}
			if bid.EnergyRate()+types.FloatingPointTolerance < offer.EnergyRate() {
				// bids are sorted, no later bid covers this offer either
				break
			}
			if isSelfTrade(bid, offer) || !RequirementsSatisfied(offer, bid) {
				continue
			}
			consumed[bid.ID] = struct{}{}
			recommendations = append(recommendations, BidOfferMatch{
				Bid:            bid,
				Offer:          offer,
				SelectedEnergy: math.Min(bid.Energy, offer.Energy),
				ClearingRate:   bid.EnergyRate(),
			})
			break
		}
	}
	return recommendations
}
