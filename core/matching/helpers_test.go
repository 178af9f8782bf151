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
	"fmt"

	"github.com/gridsingularity/gsy-e-sub001/core/types"

	"pgregory.net/rapid"
)

func trader(name string) types.TraderDetails {
	return types.NewTrader(name, name+"-id", 0)
}

func offer(id string, price, energy float64, seller string) types.Order {
	o := types.NewOffer(price, energy, trader(seller))
	o.ID = id
	return o
}

func bid(id string, price, energy float64, buyer string) types.Order {
	b := types.NewBid(price, energy, trader(buyer))
	b.ID = id
	return b
}

// drawOrders draws up to max orders with small integer rates so ties and
// crossings are frequent.
func drawOrders(t *rapid.T, side types.Side, max int) []types.Order {
	n := rapid.IntRange(0, max).Draw(t, fmt.Sprintf("n-%s", side))
	orders := make([]types.Order, 0, n)
	for i := 0; i < n; i++ {
		energy := float64(rapid.IntRange(1, 5).Draw(t, fmt.Sprintf("%s-%d-energy", side, i)))
		rate := float64(rapid.IntRange(1, 10).Draw(t, fmt.Sprintf("%s-%d-rate", side, i)))
		owner := fmt.Sprintf("trader-%d", rapid.IntRange(0, 3).Draw(t, fmt.Sprintf("%s-%d-owner", side, i)))
		id := fmt.Sprintf("%s-%d", side, i)
		if side == types.SideSell {
			orders = append(orders, offer(id, rate*energy, energy, owner))
		} else {
			orders = append(orders, bid(id, rate*energy, energy, owner))
		}
	}
	return orders
}
