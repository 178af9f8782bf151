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

package market

import (
	"sort"

	"github.com/gridsingularity/gsy-e-sub001/core/types"

	"github.com/google/btree"
)

type entry struct {
	order types.Order
	rate  float64
	seq   uint64
}

// book holds the live orders of one side of a market, indexed by id and by
// rate. Offers are ranked cheapest first, bids most expensive first, ties
// by arrival.
type book struct {
	side   types.Side
	orders map[string]*entry
	byRate *btree.BTreeG[*entry]
	seq    uint64
}

func newBook(side types.Side) *book {
	less := func(a, b *entry) bool {
		if a.rate != b.rate {
			if side == types.SideBuy {
				return a.rate > b.rate
			}
			return a.rate < b.rate
		}
		return a.seq < b.seq
	}
	return &book{
		side:   side,
		orders: map[string]*entry{},
		byRate: btree.NewG[*entry](8, less),
	}
}

func (b *book) insert(o types.Order) {
	b.seq++
	b.insertAt(o, b.seq)
}

// insertAt inserts an order keeping the arrival rank of the order it
// derives from.
func (b *book) insertAt(o types.Order, seq uint64) {
	e := &entry{order: o, rate: o.EnergyRate(), seq: seq}
	b.orders[o.ID] = e
	b.byRate.ReplaceOrInsert(e)
}

func (b *book) get(id string) (types.Order, bool) {
	e, ok := b.orders[id]
	if !ok {
		return types.Order{}, false
	}
	return e.order.Clone(), true
}

func (b *book) seqOf(id string) uint64 {
	if e, ok := b.orders[id]; ok {
		return e.seq
	}
	return 0
}

func (b *book) remove(id string) (types.Order, bool) {
	e, ok := b.orders[id]
	if !ok {
		return types.Order{}, false
	}
	delete(b.orders, id)
	b.byRate.Delete(e)
	return e.order, true
}

func (b *book) len() int {
	return len(b.orders)
}

// arrival returns the live orders by arrival.
func (b *book) arrival() []types.Order {
	entries := make([]*entry, 0, len(b.orders))
	for _, e := range b.orders {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]types.Order, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.order.Clone())
	}
	return out
}

// ranked returns the live orders in price priority.
func (b *book) ranked() []types.Order {
	out := make([]types.Order, 0, b.byRate.Len())
	b.byRate.Ascend(func(e *entry) bool {
		out = append(out, e.order.Clone())
		return true
	})
	return out
}

func (b *book) totalEnergy() float64 {
	var total float64
	for _, e := range b.orders {
		total += e.order.Energy
	}
	return total
}
