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

package agents_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/gridsingularity/gsy-e-sub001/core/agents"
	"github.com/gridsingularity/gsy-e-sub001/core/market"
	"github.com/gridsingularity/gsy-e-sub001/core/types"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Energies are drawn in quarters of a kWh so every split is exact.
func TestPartialTradesKeepMarketsInStep(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := newTestGrid("partial-trades")
		house := g.market(t, "House 1", types.MarketTypePayAsBid, 0)
		street := g.market(t, "Street", types.MarketTypePayAsBid, rapid.SampledFrom([]float64{0, 1, 5, 20}).Draw(t, "fee"))
		ma := g.agent("IAA House 1", forwardAfter(0), house, street)

		quarters := rapid.IntRange(1, 16).Draw(t, "quarters")
		total := float64(quarters) / 4
		_, err := house.PlaceOffer(rapid.Float64Range(1, 50).Draw(t, "rate")*total, total, trader("PV"))
		require.NoError(t, err)

		for quarters > 0 {
			chunk := rapid.IntRange(1, quarters).Draw(t, "chunk")
			quarters -= chunk

			mirrors := street.Offers()
			require.Len(t, mirrors, 1)
			_, err := street.AcceptOffer(mirrors[0].ID, trader("Load"), market.WithEnergy(float64(chunk)/4))
			require.NoError(t, err)

			open := float64(quarters) / 4
			require.InDelta(t, open, house.OpenEnergy(types.SideSell), 1e-9)
			require.InDelta(t, open, street.OpenEnergy(types.SideSell), 1e-9)
			require.InDelta(t, total-open, house.Stats().SoldEnergy("PV"), 1e-9)
			if quarters > 0 {
				require.Len(t, ma.Up().ForwardedIDs(), 2)
			}
		}

		require.Empty(t, ma.Up().ForwardedIDs())
		require.Empty(t, ma.Down().ForwardedIDs())
		require.True(t, house.Stats().IsBalanced())
		require.True(t, street.Stats().IsBalanced())
	})
}

type edge struct {
	agent         *agents.MarketAgent
	lower, higher *market.Market
}

type deepTree struct {
	markets []*market.Market
	houses  []*market.Market
	edges   []edge
}

func newDeepTree(t *rapid.T, g *testGrid, mt types.MarketType, cfg agents.Config) *deepTree {
	fee := func(label string) float64 {
		return rapid.SampledFrom([]float64{0, 5}).Draw(t, label)
	}
	grid := g.market(t, "Grid", mt, fee("grid-fee"))
	street1 := g.market(t, "Street 1", mt, fee("street-1-fee"))
	street2 := g.market(t, "Street 2", mt, fee("street-2-fee"))
	house1 := g.market(t, "House 1", mt, 0)
	house2 := g.market(t, "House 2", mt, 0)
	house3 := g.market(t, "House 3", mt, 0)

	tree := &deepTree{
		markets: []*market.Market{grid, street1, street2, house1, house2, house3},
		houses:  []*market.Market{house1, house2, house3},
	}
	for _, e := range []struct {
		lower, higher *market.Market
	}{
		{house1, street1}, {house2, street1}, {house3, street2}, {street1, grid}, {street2, grid},
	} {
		tree.edges = append(tree.edges, edge{
			agent:  g.agent("IAA "+e.lower.Name(), cfg, e.lower, e.higher),
			lower:  e.lower,
			higher: e.higher,
		})
	}
	return tree
}

func liveOrders(m *market.Market) []types.Order {
	return append(m.SortedOffers(), m.SortedBids()...)
}

func quarters(energy float64) int {
	return int(math.Round(energy * 4))
}

func requireLive(t *rapid.T, m *market.Market, o types.Order, engine string) {
	_, ok := m.Order(o.Side, o.ID)
	require.Truef(t, ok, "%s records %s which left %s", engine, o.ID, m.Name())
}

func (d *deepTree) check(t *rapid.T) {
	for _, m := range d.markets {
		require.True(t, m.Stats().IsBalanced(), m.Name())
		for _, tr := range m.Trades() {
			require.NotEqual(t, tr.Seller.Name, tr.Buyer.Name, "self trade in %s", m.Name())
		}
	}
	for _, e := range d.edges {
		for _, id := range e.agent.Up().ForwardedIDs() {
			c, ok := e.agent.Up().Correspondence(id)
			require.True(t, ok)
			requireLive(t, e.lower, c.Source, e.agent.Up().Name())
			requireLive(t, e.higher, c.Target, e.agent.Up().Name())
		}
		for _, id := range e.agent.Down().ForwardedIDs() {
			c, ok := e.agent.Down().Correspondence(id)
			require.True(t, ok)
			requireLive(t, e.higher, c.Source, e.agent.Down().Name())
			requireLive(t, e.lower, c.Target, e.agent.Down().Name())
		}

		var net float64
		for _, m := range d.markets {
			net += m.Stats().TradedEnergy(e.agent.Name())
		}
		require.InDelta(t, 0, net, 1e-6, "%s holds energy", e.agent.Name())
	}
}

// Orders are placed in the houses, then traded, cancelled and matched in any
// market of a three level tree. Energies stay in quarters of a kWh.
func TestForwardingAcrossATreeKeepsOnlyLiveOrders(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := newTestGrid("deep-tree")
		mt := rapid.SampledFrom([]types.MarketType{types.MarketTypePayAsBid, types.MarketTypePayAsClear}).Draw(t, "type")
		tree := newDeepTree(t, g, mt, forwardAfter(rapid.IntRange(0, 2).Draw(t, "min-age")))

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for tick := 0; tick < steps; tick++ {
			switch rapid.IntRange(0, 4).Draw(t, "action") {
			case 0:
				house := rapid.SampledFrom(tree.houses).Draw(t, "house")
				energy := float64(rapid.IntRange(1, 8).Draw(t, "offer-quarters")) / 4
				_, err := house.PlaceOffer(rapid.Float64Range(1, 30).Draw(t, "offer-rate")*energy, energy,
					trader(fmt.Sprintf("PV %s", house.Name())))
				require.NoError(t, err)
			case 1:
				house := rapid.SampledFrom(tree.houses).Draw(t, "house")
				energy := float64(rapid.IntRange(1, 8).Draw(t, "bid-quarters")) / 4
				_, err := house.PlaceBid(rapid.Float64Range(1, 40).Draw(t, "bid-rate")*energy, energy,
					trader(fmt.Sprintf("Load %s", house.Name())))
				require.NoError(t, err)
			case 2:
				m := rapid.SampledFrom(tree.markets).Draw(t, "cancel-market")
				if live := liveOrders(m); len(live) > 0 {
					o := rapid.SampledFrom(live).Draw(t, "cancel-order")
					require.NoError(t, m.Cancel(o.Side, o.ID))
				}
			case 3:
				m := rapid.SampledFrom(tree.markets).Draw(t, "accept-market")
				if live := liveOrders(m); len(live) > 0 {
					o := rapid.SampledFrom(live).Draw(t, "accept-order")
					energy := float64(rapid.IntRange(1, quarters(o.Energy)).Draw(t, "accept-quarters")) / 4
					_, err := m.Accept(o.Side, o.ID, trader("Third Party"), market.WithEnergy(energy))
					require.NoError(t, err)
				}
			case 4:
				for _, e := range tree.edges {
					e.agent.Tick(tick)
				}
			}
			tree.check(t)
		}

		for tick := steps; tick < steps+3; tick++ {
			for _, e := range tree.edges {
				e.agent.Tick(tick)
			}
		}
		tree.check(t)
	})
}
