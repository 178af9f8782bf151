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
	"sort"

	"github.com/gridsingularity/gsy-e-sub001/core/types"
)

// PayAsClear matches every pair at a single clearing rate chosen to
// maximise the traded volume.
type PayAsClear struct{}

func (PayAsClear) Name() string {
	return "pay-as-clear"
}

// ClearingPoint is the rate and volume where the supply and demand curves
// of a market meet.
type ClearingPoint struct {
	Rate   float64
	Volume float64
}

// Supply returns the cumulative offered energy at or below rate.
func Supply(offers []types.Order, rate float64) float64 {
	var total float64
	for _, o := range offers {
		if o.EnergyRate() <= rate+types.FloatingPointTolerance {
			total += o.Energy
		}
	}
	return total
}

// Demand returns the cumulative bid energy at or above rate.
func Demand(bids []types.Order, rate float64) float64 {
	var total float64
	for _, b := range bids {
		if b.EnergyRate() >= rate-types.FloatingPointTolerance {
			total += b.Energy
		}
	}
	return total
}

// Clear computes the clearing point. The curves only change at order rates,
// so every distinct rate is a candidate; the candidate with the largest
// volume min(supply, demand) wins and ties go to the highest rate. ok is
// false when no volume can be cleared.
func Clear(bids, offers []types.Order) (cp ClearingPoint, ok bool) {
	candidates := make([]float64, 0, len(bids)+len(offers))
	for _, o := range offers {
		candidates = append(candidates, o.EnergyRate())
	}
	for _, b := range bids {
		candidates = append(candidates, b.EnergyRate())
	}
	sort.Float64s(candidates)

	for _, rate := range candidates {
		volume := math.Min(Supply(offers, rate), Demand(bids, rate))
		if volume <= types.FloatingPointTolerance {
			continue
		}
		switch {
		case !ok || volume > cp.Volume+types.FloatingPointTolerance:
			cp = ClearingPoint{Rate: rate, Volume: volume}
			ok = true
		case volume >= cp.Volume-types.FloatingPointTolerance:
			cp.Rate = rate
			cp.Volume = math.Max(cp.Volume, volume)
		}
	}
	return cp, ok
}

// Recommend clears the market and allocates the cleared volume, walking
// bids most expensive first and filling each from the cheapest offers.
func (PayAsClear) Recommend(bids, offers []types.Order) []BidOfferMatch {
	cp, ok := Clear(bids, offers)
	if !ok {
		return nil
	}

	sortedOffers := []types.Order{}
	for _, o := range sortByRate(offers, false) {
		if o.EnergyRate() <= cp.Rate+types.FloatingPointTolerance {
			sortedOffers = append(sortedOffers, o)
		}
	}
	offerLeft := make([]float64, len(sortedOffers))
	for i, o := range sortedOffers {
		offerLeft[i] = o.Energy
	}

	budget := cp.Volume
	recommendations := []BidOfferMatch{}
	for _, bid := range sortByRate(bids, true) {
		if bid.EnergyRate() < cp.Rate-types.FloatingPointTolerance || budget <= types.FloatingPointTolerance {
			break
		}
		bidLeft := bid.Energy
		for i, offer := range sortedOffers {
			if bidLeft <= types.FloatingPointTolerance || budget <= types.FloatingPointTolerance {
				break
			}
			if offerLeft[i] <= types.FloatingPointTolerance {
				continue
			}
			if isSelfTrade(bid, offer) || !RequirementsSatisfied(offer, bid) {
				continue
			}
			energy := math.Min(math.Min(bidLeft, offerLeft[i]), budget)
			recommendations = append(recommendations, BidOfferMatch{
				Bid:            bid,
				Offer:          offer,
				SelectedEnergy: energy,
				ClearingRate:   cp.Rate,
			})
			bidLeft -= energy
			offerLeft[i] -= energy
			budget -= energy
		}
	}
	return recommendations
}
