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

package matching_test

import (
	"math"
	"testing"

	"github.com/gridsingularity/gsy-e-sub001/core/matching"
	"github.com/gridsingularity/gsy-e-sub001/core/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPayAsClearSingleRate(t *testing.T) {
	offers := []types.Order{
		offer("o1", 1, 1, "pv1"),
		offer("o2", 2, 1, "pv2"),
		offer("o3", 3, 1, "pv3"),
		offer("o4", 4, 1, "pv4"),
	}
	bids := []types.Order{
		bid("b4", 4, 1, "load4"),
		bid("b3", 3, 1, "load3"),
		bid("b2", 2, 1, "load2"),
		bid("b1", 1, 1, "load1"),
	}

	cp, ok := matching.Clear(bids, offers)
	require.True(t, ok)
	assert.Equal(t, 3.0, cp.Rate)
	assert.InDelta(t, 2.0, cp.Volume, 1e-9)

	recs := matching.PayAsClear{}.Recommend(bids, offers)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.Equal(t, 3.0, r.ClearingRate)
	}
	assert.Equal(t, "b4", recs[0].Bid.ID)
	assert.Equal(t, "o1", recs[0].Offer.ID)
	assert.Equal(t, "b3", recs[1].Bid.ID)
	assert.Equal(t, "o2", recs[1].Offer.ID)
}

func TestPayAsClearSplitsABidAcrossOffers(t *testing.T) {
	recs := matching.PayAsClear{}.Recommend(
		[]types.Order{bid("b", 15, 3, "load")},
		[]types.Order{offer("o1", 2, 1, "pv1"), offer("o2", 8, 2, "pv2")},
	)
	require.Len(t, recs, 2)
	assert.Equal(t, 1.0, recs[0].SelectedEnergy)
	assert.Equal(t, 2.0, recs[1].SelectedEnergy)
	assert.Equal(t, recs[0].ClearingRate, recs[1].ClearingRate)
}

func TestPayAsClearNothingToClear(t *testing.T) {
	_, ok := matching.Clear([]types.Order{bid("b", 1, 1, "load")}, []types.Order{offer("o", 5, 1, "pv")})
	assert.False(t, ok)
	assert.Empty(t, matching.PayAsClear{}.Recommend(nil, []types.Order{offer("o", 5, 1, "pv")}))
}

func TestPayAsClearVolumeIsOptimal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bids := drawOrders(t, types.SideBuy, 8)
		offers := drawOrders(t, types.SideSell, 8)

		cp, ok := matching.Clear(bids, offers)

		best := 0.0
		for rate := 0.5; rate <= 10.5; rate += 0.25 {
			best = math.Max(best, math.Min(matching.Supply(offers, rate), matching.Demand(bids, rate)))
		}
		if !ok {
			if best > types.FloatingPointTolerance {
				t.Fatalf("no clearing point although %f can be cleared", best)
			}
			return
		}
		if math.Abs(cp.Volume-best) > 1e-6 {
			t.Fatalf("cleared volume %f, best achievable %f", cp.Volume, best)
		}
		achieved := math.Min(matching.Supply(offers, cp.Rate), matching.Demand(bids, cp.Rate))
		if math.Abs(achieved-cp.Volume) > 1e-6 {
			t.Fatalf("volume %f not achievable at rate %f", cp.Volume, cp.Rate)
		}

		var recommended float64
		for _, r := range (matching.PayAsClear{}).Recommend(bids, offers) {
			if err := matching.ValidateBidOfferMatch(r.Bid, r.Offer, r.ClearingRate, r.SelectedEnergy); err != nil {
				t.Fatalf("invalid recommendation: %v", err)
			}
			recommended += r.SelectedEnergy
		}
		if recommended > cp.Volume+1e-6 {
			t.Fatalf("recommended %f above cleared volume %f", recommended, cp.Volume)
		}
	})
}
