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

package market_test

import (
	"testing"

	"github.com/gridsingularity/gsy-e-sub001/core/fee"
	"github.com/gridsingularity/gsy-e-sub001/core/idgeneration"
	"github.com/gridsingularity/gsy-e-sub001/core/market"
	"github.com/gridsingularity/gsy-e-sub001/core/types"
	"github.com/gridsingularity/gsy-e-sub001/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getBalancingMarket(t *testing.T) *market.BalancingMarket {
	t.Helper()
	fees, err := fee.New(fee.Config{Percentage: 10})
	require.NoError(t, err)
	return market.NewBalancing(
		logging.NewTestLogger(),
		market.NewDefaultConfig(),
		"balancing-id", "House 1", slot, fees,
		discardBroker{}, idgeneration.NewFromSeed(t.Name()),
		market.NewDeviceRegistry("PV", "Load"),
	)
}

func TestBalancingOffers(t *testing.T) {
	bm := getBalancingMarket(t)
	assert.Equal(t, types.MarketTypeOneSided, bm.Type())

	_, err := bm.PlaceOffer(1, 1, trader("PV"))
	assert.ErrorIs(t, err, types.ErrUnsupportedOrder)
	_, err = bm.PlaceBid(1, 1, trader("PV"))
	assert.ErrorIs(t, err, types.ErrUnsupportedOrder)

	_, err = bm.PlaceBalancingOffer(1, 1, trader("Stranger"), false)
	assert.ErrorIs(t, err, types.ErrDeviceNotInRegistry)
	_, err = bm.PlaceBalancingOffer(1, 0, trader("PV"), false)
	assert.ErrorIs(t, err, types.ErrInvalidOrder)

	up, err := bm.PlaceBalancingOffer(10, 2, trader("PV"), false)
	require.NoError(t, err)
	// no grid fee on balancing offers
	assert.Equal(t, 10.0, up.Price)

	down, err := bm.PlaceBalancingOffer(4, -2, trader("Load"), false)
	require.NoError(t, err)
	assert.Equal(t, -2.0, down.Energy)

	fromAgent, err := bm.PlaceBalancingOffer(1, 1, trader("IAA House 1"), true)
	require.NoError(t, err)
	assert.Len(t, bm.Offers(), 3)
	require.NoError(t, bm.CancelBalancingOffer(fromAgent.ID))
}

func TestAcceptBalancingOffer(t *testing.T) {
	bm := getBalancingMarket(t)
	up, err := bm.PlaceBalancingOffer(10, 2, trader("PV"), false)
	require.NoError(t, err)
	down, err := bm.PlaceBalancingOffer(4, -2, trader("Load"), false)
	require.NoError(t, err)

	_, err = bm.AcceptBalancingOffer(up.ID, trader("Agent"), -1)
	assert.ErrorIs(t, err, types.ErrInvalidBalancingTrade)
	_, err = bm.AcceptBalancingOffer(up.ID, trader("Agent"), 0)
	assert.ErrorIs(t, err, types.ErrInvalidBalancingTrade)
	_, err = bm.AcceptBalancingOffer(up.ID, trader("Agent"), 3)
	assert.ErrorIs(t, err, types.ErrInvalidBalancingTrade)

	trade, err := bm.AcceptBalancingOffer(up.ID, trader("Agent"), 1)
	require.NoError(t, err)
	assert.True(t, trade.Balancing)
	assert.Zero(t, trade.FeePrice)
	assert.InDelta(t, 5, trade.Price, 1e-9)
	require.NotNil(t, trade.Residual)
	assert.InDelta(t, 1, trade.Residual.Energy, 1e-9)

	trade, err = bm.AcceptBalancingOffer(down.ID, trader("Agent"), -2)
	require.NoError(t, err)
	assert.Nil(t, trade.Residual)

	assert.InDelta(t, 5, bm.AvgSupplyRate(), 1e-9)
	assert.InDelta(t, 2, bm.AvgDemandRate(), 1e-9)

	bm.SetUnmatched(1.5, 0.5)
	assert.Equal(t, 1.5, bm.UnmatchedUpward())
	assert.Equal(t, 0.5, bm.UnmatchedDownward())
	assert.True(t, bm.Snapshot().Balancing)
}
