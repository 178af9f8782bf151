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
	"time"

	"github.com/gridsingularity/gsy-e-sub001/core/types"
)

// Snapshot is a value copy of a market, taken once the market is frozen and
// handed to the journal.
type Snapshot struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         string        `json:"type"`
	TimeSlot     time.Time     `json:"time_slot"`
	Balancing    bool          `json:"balancing,omitempty"`
	Offers       []types.Order `json:"offers"`
	Bids         []types.Order `json:"bids"`
	Trades       []types.Trade `json:"trades"`
	OfferHistory []types.Order `json:"offer_history"`
	BidHistory   []types.Order `json:"bid_history"`
	Stats        StatsSummary  `json:"stats"`
}

// Snapshot returns a copy of the current state of the market.
func (m *Market) Snapshot() Snapshot {
	return Snapshot{
		ID:           m.id,
		Name:         m.name,
		Type:         m.cfg.Type.String(),
		TimeSlot:     m.timeSlot,
		Offers:       m.Offers(),
		Bids:         m.Bids(),
		Trades:       m.Trades(),
		OfferHistory: m.OfferHistory(),
		BidHistory:   m.BidHistory(),
		Stats:        m.stats.Summary(),
	}
}

// Snapshot returns a copy of the current state of the balancing market.
func (b *BalancingMarket) Snapshot() Snapshot {
	s := b.Market.Snapshot()
	s.Balancing = true
	return s
}
