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
	"testing"

	"github.com/gridsingularity/gsy-e-sub001/core/matching"
	"github.com/gridsingularity/gsy-e-sub001/core/types"

	"github.com/stretchr/testify/assert"
)

func TestValidateBidOfferMatch(t *testing.T) {
	b := bid("b", 30, 3, "load")
	o := offer("o", 10, 2, "pv")

	cases := []struct {
		name    string
		bid     types.Order
		offer   types.Order
		rate    float64
		energy  float64
		isValid bool
	}{
		{name: "valid at bid rate", bid: b, offer: o, rate: 10, energy: 2, isValid: true},
		{name: "valid at offer rate", bid: b, offer: o, rate: 5, energy: 1, isValid: true},
		{name: "tolerance on rates", bid: b, offer: o, rate: 10.000001, energy: 2, isValid: true},
		{name: "zero energy", bid: b, offer: o, rate: 7, energy: 0},
		{name: "more than the offer", bid: b, offer: o, rate: 7, energy: 2.5},
		{name: "more than the bid", bid: b, offer: offer("big", 10, 5, "pv"), rate: 7, energy: 4},
		{name: "rate above bid", bid: b, offer: o, rate: 11, energy: 1},
		{name: "rate below offer", bid: b, offer: o, rate: 4, energy: 1},
		{name: "self trade", bid: bid("b", 30, 3, "pv"), offer: o, rate: 7, energy: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := matching.ValidateBidOfferMatch(tc.bid, tc.offer, tc.rate, tc.energy)
			if tc.isValid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, types.ErrInvalidPairing)
		})
	}
}

func TestRequirementsSatisfied(t *testing.T) {
	o := offer("o", 1, 1, "pv")
	o.Attributes.EnergyType = "Green"
	b := bid("b", 1, 1, "load")

	assert.True(t, matching.RequirementsSatisfied(o, b), "no requirements")

	b.Requirements = []types.Requirement{{EnergyTypes: []string{"Grey"}}}
	assert.False(t, matching.RequirementsSatisfied(o, b))

	b.Requirements = append(b.Requirements, types.Requirement{EnergyTypes: []string{"Green"}})
	assert.True(t, matching.RequirementsSatisfied(o, b), "second requirement holds")

	b.Requirements = []types.Requirement{{TradingPartners: []string{"pv-id"}, EnergyTypes: []string{"Green"}}}
	assert.True(t, matching.RequirementsSatisfied(o, b))

	b.Requirements = []types.Requirement{{TradingPartners: []string{"wind-id"}, EnergyTypes: []string{"Green"}}}
	assert.False(t, matching.RequirementsSatisfied(o, b), "every field of a requirement must hold")

	b.Requirements = nil
	o.Requirements = []types.Requirement{{TradingPartners: []string{"load-id"}}}
	assert.True(t, matching.RequirementsSatisfied(o, b))

	o.Requirements = []types.Requirement{{EnergyTypes: []string{"Green"}}}
	assert.False(t, matching.RequirementsSatisfied(o, b), "offers cannot require an energy type")

	// a mirrored bid still satisfies partners listed by origin
	mirrored := b
	mirrored.Trader = b.Trader.OnBehalfOf("MA house", "ma-house-id")
	o.Requirements = []types.Requirement{{TradingPartners: []string{"load-id"}}}
	assert.True(t, matching.RequirementsSatisfied(o, mirrored))
}

func TestNewAlgorithm(t *testing.T) {
	a, err := matching.New(types.MarketTypePayAsBid)
	assert.NoError(t, err)
	assert.Equal(t, "pay-as-bid", a.Name())

	a, err = matching.New(types.MarketTypePayAsClear)
	assert.NoError(t, err)
	assert.Equal(t, "pay-as-clear", a.Name())

	_, err = matching.New(types.MarketTypeOneSided)
	assert.ErrorIs(t, err, matching.ErrNoMatchingAlgorithm)
}
