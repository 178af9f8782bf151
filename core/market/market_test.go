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
	"time"

	"github.com/gridsingularity/gsy-e-sub001/core/events"
	"github.com/gridsingularity/gsy-e-sub001/core/fee"
	"github.com/gridsingularity/gsy-e-sub001/core/idgeneration"
	"github.com/gridsingularity/gsy-e-sub001/core/market"
	"github.com/gridsingularity/gsy-e-sub001/core/market/mocks"
	"github.com/gridsingularity/gsy-e-sub001/core/matching"
	"github.com/gridsingularity/gsy-e-sub001/core/types"
	"github.com/gridsingularity/gsy-e-sub001/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var slot = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type testMarket struct {
	*market.Market
	ctrl   *gomock.Controller
	broker *mocks.MockBroker
	events []events.Event
}

func getTestMarket(t *testing.T, mt types.MarketType, feePct float64) *testMarket {
	t.Helper()
	ctrl := gomock.NewController(t)
	broker := mocks.NewMockBroker(ctrl)

	fees, err := fee.New(fee.Config{Percentage: feePct})
	require.NoError(t, err)

	cfg := market.NewDefaultConfig()
	cfg.Type = mt

	tm := &testMarket{
		ctrl:   ctrl,
		broker: broker,
	}
	broker.EXPECT().Send(gomock.Any()).AnyTimes().Do(func(e events.Event) {
		tm.events = append(tm.events, e)
	})
	tm.Market = market.New(logging.NewTestLogger(), cfg, "market-id", "House 1", slot, fees, broker, idgeneration.NewFromSeed(t.Name()))
	return tm
}

func (tm *testMarket) eventTypes() []events.Type {
	out := make([]events.Type, 0, len(tm.events))
	for _, e := range tm.events {
		out = append(out, e.Type())
	}
	return out
}

func trader(name string) types.TraderDetails {
	return types.NewTrader(name, name+"-id", types.CapabilityProducer)
}

func TestPlaceOrders(t *testing.T) {
	t.Run("fees are added to offers and bids", testPlaceAppliesFees)
	t.Run("placement can skip fees and events", testPlaceOptions)
	t.Run("invalid orders are rejected", testPlaceInvalid)
	t.Run("one sided markets refuse bids", testOneSidedRefusesBids)
	t.Run("frozen markets refuse orders", testFrozenMarket)
}

func testPlaceAppliesFees(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 5)

	offer, err := tm.PlaceOffer(20, 2, trader("A"))
	require.NoError(t, err)
	assert.InDelta(t, 21, offer.Price, 1e-9)
	assert.Equal(t, 20.0, offer.OriginalPrice)
	assert.Equal(t, slot, offer.TimeSlot)
	assert.NotEmpty(t, offer.ID)

	bid, err := tm.PlaceBid(10, 1, trader("B"))
	require.NoError(t, err)
	assert.InDelta(t, 10.5, bid.Price, 1e-9)

	assert.Len(t, tm.Offers(), 1)
	assert.Len(t, tm.Bids(), 1)
	assert.Equal(t, []events.Type{events.OrderPlacedEvent, events.OrderPlacedEvent}, tm.eventTypes())
	placed := tm.events[0].(*events.OrderPlaced)
	assert.Equal(t, "market-id", placed.MarketID())
	assert.Equal(t, offer.ID, placed.Order().ID)
}

func testPlaceOptions(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 5)

	offer, err := tm.PlaceOffer(21, 2, trader("IAA House"),
		market.WithID("mirror"),
		market.WithOriginalPrice(20),
		market.WithoutFees(),
		market.WithoutEvent(),
	)
	require.NoError(t, err)
	assert.Equal(t, "mirror", offer.ID)
	assert.Equal(t, 21.0, offer.Price)
	assert.Equal(t, 20.0, offer.OriginalPrice)
	assert.Empty(t, tm.events)

	tm.DispatchPlaced(types.SideSell, offer.ID)
	assert.Equal(t, []events.Type{events.OrderPlacedEvent}, tm.eventTypes())

	_, err = tm.PlaceOffer(1, 1, trader("A"), market.WithID("mirror"))
	assert.ErrorIs(t, err, types.ErrInvalidOrder)
}

func testPlaceInvalid(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 0)

	_, err := tm.PlaceOffer(1, 0, trader("A"))
	assert.ErrorIs(t, err, types.ErrInvalidOrder)
	_, err = tm.PlaceBid(1, -1, trader("A"))
	assert.ErrorIs(t, err, types.ErrInvalidOrder)
	_, err = tm.PlaceOffer(-1, 1, trader("A"))
	assert.ErrorIs(t, err, types.ErrNegativePrice)
	assert.Empty(t, tm.Offers())
	assert.Empty(t, tm.events)
}

func testOneSidedRefusesBids(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypeOneSided, 0)
	_, err := tm.PlaceBid(1, 1, trader("A"))
	assert.ErrorIs(t, err, types.ErrUnsupportedOrder)
	assert.False(t, tm.IsTradable())
}

func testFrozenMarket(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 0)
	offer, err := tm.PlaceOffer(1, 1, trader("A"))
	require.NoError(t, err)

	tm.Freeze()
	assert.True(t, tm.IsReadOnly())
	assert.False(t, tm.IsTradable())

	_, err = tm.PlaceOffer(1, 1, trader("A"))
	assert.ErrorIs(t, err, types.ErrMarketReadOnly)
	_, err = tm.AcceptOffer(offer.ID, trader("B"))
	assert.ErrorIs(t, err, types.ErrMarketReadOnly)
	assert.ErrorIs(t, tm.CancelOffer(offer.ID), types.ErrMarketReadOnly)
	assert.Zero(t, tm.Match())
}

func TestCancel(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 0)
	bid, err := tm.PlaceBid(3, 1, trader("B"))
	require.NoError(t, err)

	require.NoError(t, tm.CancelBid(bid.ID))
	assert.Empty(t, tm.Bids())
	assert.Equal(t, []events.Type{events.OrderPlacedEvent, events.OrderDeletedEvent}, tm.eventTypes())

	assert.ErrorIs(t, tm.CancelBid(bid.ID), types.ErrOrderNotFound)
	assert.ErrorIs(t, tm.CancelOffer("unknown"), types.ErrOrderNotFound)
}

func TestAcceptOffer(t *testing.T) {
	t.Run("full acceptance", testAcceptFull)
	t.Run("partial acceptance splits the offer", testAcceptSplits)
	t.Run("invalid acceptances", testAcceptInvalid)
	t.Run("trade rate", testAcceptTradeRate)
}

func testAcceptFull(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 0)
	offer, err := tm.PlaceOffer(20, 2, trader("A"))
	require.NoError(t, err)

	trade, err := tm.AcceptOffer(offer.ID, trader("B"), market.WithEnergy(2))
	require.NoError(t, err)
	assert.Nil(t, trade.Residual)
	assert.Equal(t, "A", trade.Seller.Name)
	assert.Equal(t, "B", trade.Buyer.Name)
	assert.Equal(t, 2.0, trade.Energy)
	assert.Equal(t, 20.0, trade.Price)
	assert.Empty(t, tm.Offers())
	assert.Len(t, tm.Trades(), 1)
	assert.Equal(t, []events.Type{events.OrderPlacedEvent, events.TradeEvent}, tm.eventTypes())
}

func testAcceptSplits(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 0)
	offer, err := tm.PlaceOffer(20, 2, trader("A"))
	require.NoError(t, err)

	trade, err := tm.AcceptOffer(offer.ID, trader("B"), market.WithEnergy(1))
	require.NoError(t, err)
	assert.Equal(t, offer.ID, trade.Order.ID)
	assert.InDelta(t, 10, trade.Price, 1e-9)
	require.NotNil(t, trade.Residual)
	assert.NotEqual(t, offer.ID, trade.Residual.ID)
	assert.InDelta(t, 1, trade.Residual.Energy, 1e-9)
	assert.InDelta(t, 10, trade.Residual.Price, 1e-9)

	live := tm.Offers()
	require.Len(t, live, 1)
	assert.Equal(t, trade.Residual.ID, live[0].ID)

	assert.Equal(t, []events.Type{events.OrderPlacedEvent, events.OrderSplitEvent, events.TradeEvent}, tm.eventTypes())
	split := tm.events[1].(*events.OrderSplit)
	assert.Equal(t, offer.ID, split.Original().ID)
	assert.Equal(t, offer.ID, split.Accepted().ID)
	assert.Equal(t, trade.Residual.ID, split.Residual().ID)
}

func testAcceptInvalid(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 0)
	offer, err := tm.PlaceOffer(20, 2, trader("A"))
	require.NoError(t, err)

	_, err = tm.AcceptOffer(offer.ID, trader("B"), market.WithEnergy(3))
	assert.ErrorIs(t, err, types.ErrInvalidTrade)
	_, err = tm.AcceptOffer(offer.ID, trader("B"), market.WithEnergy(0))
	assert.ErrorIs(t, err, types.ErrInvalidTrade)
	_, err = tm.AcceptOffer(offer.ID, trader("A"))
	assert.ErrorIs(t, err, types.ErrInvalidTrade)
	_, err = tm.AcceptOffer("unknown", trader("B"))
	assert.ErrorIs(t, err, types.ErrOrderNotFound)

	// a failed acceptance leaves the offer untouched
	live, ok := tm.Offer(offer.ID)
	require.True(t, ok)
	assert.Equal(t, offer, live)
	assert.Empty(t, tm.Trades())
}

func testAcceptTradeRate(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 0)
	offer, err := tm.PlaceOffer(20, 2, trader("A"))
	require.NoError(t, err)

	_, err = tm.AcceptOffer(offer.ID, trader("B"), market.WithTradeRate(9))
	assert.ErrorIs(t, err, types.ErrInvalidTrade)

	trade, err := tm.AcceptOffer(offer.ID, trader("B"), market.WithTradeRate(12))
	require.NoError(t, err)
	assert.InDelta(t, 24, trade.Price, 1e-9)
	assert.InDelta(t, 12, trade.Rate(), 1e-9)
}

func TestAcceptBidSplits(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 0)
	bid, err := tm.PlaceBid(9, 3, trader("B"))
	require.NoError(t, err)

	trade, err := tm.AcceptBid(bid.ID, trader("A"), market.WithEnergy(1))
	require.NoError(t, err)
	assert.Equal(t, "A", trade.Seller.Name)
	assert.Equal(t, "B", trade.Buyer.Name)
	assert.InDelta(t, 3, trade.Price, 1e-9)
	require.NotNil(t, trade.Residual)
	assert.InDelta(t, 6, trade.Residual.Price, 1e-9)
	assert.InDelta(t, 2, trade.Residual.Energy, 1e-9)
	assert.Equal(t, types.SideBuy, trade.Residual.Side)

	_, err = tm.AcceptBid(trade.Residual.ID, trader("A"), market.WithTradeRate(4))
	assert.ErrorIs(t, err, types.ErrInvalidTrade)
}

func TestAcceptBidOfferPair(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 0)
	offer, err := tm.PlaceOffer(2, 2, trader("A"))
	require.NoError(t, err)
	bid, err := tm.PlaceBid(3, 1, trader("B"))
	require.NoError(t, err)

	_, _, err = tm.AcceptBidOfferPair(bid.ID, offer.ID, 0.5, 1)
	assert.ErrorIs(t, err, types.ErrInvalidPairing)

	offerTrade, bidTrade, err := tm.AcceptBidOfferPair(bid.ID, offer.ID, 3, 1)
	require.NoError(t, err)
	assert.False(t, offerTrade.AlreadyTracked)
	assert.True(t, bidTrade.AlreadyTracked)
	assert.InDelta(t, 3, offerTrade.Price, 1e-9)
	assert.InDelta(t, 3, bidTrade.Price, 1e-9)
	require.NotNil(t, offerTrade.Residual)
	assert.Nil(t, bidTrade.Residual)

	stats := tm.Stats()
	assert.Equal(t, 1, stats.TradeCount())
	assert.InDelta(t, 1, stats.TradedEnergy("A"), 1e-9)
	assert.InDelta(t, -1, stats.TradedEnergy("B"), 1e-9)
	assert.True(t, stats.IsBalanced())
}

func TestMatchRecommendationsFollowsResiduals(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 0)
	offer, err := tm.PlaceOffer(3, 3, trader("A"))
	require.NoError(t, err)
	b1, err := tm.PlaceBid(2, 1, trader("B"))
	require.NoError(t, err)
	b2, err := tm.PlaceBid(2, 1, trader("C"))
	require.NoError(t, err)
	gone, err := tm.PlaceBid(5, 1, trader("D"))
	require.NoError(t, err)
	require.NoError(t, tm.CancelBid(gone.ID))

	recs := []matching.BidOfferMatch{
		{Bid: b1, Offer: offer, SelectedEnergy: 1, ClearingRate: 2},
		{Bid: gone, Offer: offer, SelectedEnergy: 1, ClearingRate: 5},
		{Bid: b2, Offer: offer, SelectedEnergy: 1, ClearingRate: 2},
		// rate below the offer, dropped
		{Bid: b2, Offer: offer, SelectedEnergy: 1, ClearingRate: 0.5},
	}
	assert.Equal(t, 2, tm.MatchRecommendations(recs))

	live := tm.Offers()
	require.Len(t, live, 1)
	assert.InDelta(t, 1, live[0].Energy, 1e-9)
	assert.Empty(t, tm.Bids())
	assert.Len(t, tm.Trades(), 4)
}

func TestMatchPayAsBidExample(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 0)
	for i, name := range []string{"S1", "S2", "S3", "S4"} {
		_, err := tm.PlaceOffer(float64(i+1), 1, trader(name))
		require.NoError(t, err)
	}
	for i, name := range []string{"B4", "B3", "B2", "B1"} {
		_, err := tm.PlaceBid(float64(4-i), 1, trader(name))
		require.NoError(t, err)
	}

	assert.Equal(t, 2, tm.Match())

	sellers := map[string]string{}
	for _, tr := range tm.Trades() {
		if tr.IsOfferTrade() {
			sellers[tr.Seller.Name] = tr.Buyer.Name
		}
	}
	assert.Equal(t, map[string]string{"S1": "B4", "S2": "B3"}, sellers)
	assert.Len(t, tm.Offers(), 2)
	assert.Len(t, tm.Bids(), 2)
	assert.True(t, tm.Stats().IsBalanced())
	assert.InDelta(t, 2, tm.Stats().TotalTraded(), 1e-9)
	assert.InDelta(t, 3, tm.Stats().MinRate(), 1e-9)
	assert.InDelta(t, 4, tm.Stats().MaxRate(), 1e-9)
}

func TestMatchPayAsClearUsesOneRate(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsClear, 0)
	for i, name := range []string{"S1", "S2", "S3"} {
		_, err := tm.PlaceOffer(float64(i+1), 1, trader(name))
		require.NoError(t, err)
	}
	for i, name := range []string{"B3", "B2", "B1"} {
		_, err := tm.PlaceBid(float64(3-i), 1, trader(name))
		require.NoError(t, err)
	}

	tm.Match()
	trades := tm.Trades()
	require.NotEmpty(t, trades)
	rate := trades[0].Rate()
	for _, tr := range trades {
		assert.InDelta(t, rate, tr.Rate(), 1e-9)
	}
	assert.True(t, tm.Stats().IsBalanced())
}

func TestSortedViews(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 0)
	_, err := tm.PlaceOffer(3, 1, trader("A"))
	require.NoError(t, err)
	_, err = tm.PlaceOffer(1, 1, trader("B"))
	require.NoError(t, err)
	_, err = tm.PlaceBid(1, 1, trader("C"))
	require.NoError(t, err)
	_, err = tm.PlaceBid(3, 1, trader("D"))
	require.NoError(t, err)

	offers := tm.SortedOffers()
	assert.Equal(t, "B", offers[0].Trader.Name)
	assert.Equal(t, "A", tm.Offers()[0].Trader.Name)
	bids := tm.SortedBids()
	assert.Equal(t, "D", bids[0].Trader.Name)
	assert.InDelta(t, 2, tm.OpenEnergy(types.SideSell), 1e-9)
}

func TestSnapshot(t *testing.T) {
	tm := getTestMarket(t, types.MarketTypePayAsBid, 0)
	offer, err := tm.PlaceOffer(4, 2, trader("A"))
	require.NoError(t, err)
	_, err = tm.AcceptOffer(offer.ID, trader("B"), market.WithEnergy(1))
	require.NoError(t, err)
	tm.Freeze()

	snap := tm.Snapshot()
	assert.Equal(t, "market-id", snap.ID)
	assert.Equal(t, "House 1", snap.Name)
	assert.Equal(t, types.MarketTypePayAsBid.String(), snap.Type)
	assert.Len(t, snap.Offers, 1)
	assert.Len(t, snap.Trades, 1)
	// the residual is recorded in the history next to the original offer
	assert.Len(t, snap.OfferHistory, 2)
	assert.Equal(t, 1, snap.Stats.Trades)
}
