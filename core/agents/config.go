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

package agents

import (
	"github.com/gridsingularity/gsy-e-sub001/config/encoding"
	"github.com/gridsingularity/gsy-e-sub001/logging"
)

const namedLogger = "agents"

// Config holds the forwarding parameters shared by every market agent.
type Config struct {
	Level encoding.LogLevel `long:"log-level" toml:"level"`

	// MinOfferAge is the number of ticks an offer waits in its market before
	// it is mirrored into the adjacent one. Zero forwards on placement.
	MinOfferAge int `long:"min-offer-age" toml:"min-offer-age"`
	MinBidAge   int `long:"min-bid-age" toml:"min-bid-age"`

	// BalancingSpotTradeRatio sizes the balancing energy bought for every
	// spot trade of the agent.
	BalancingSpotTradeRatio float64 `long:"balancing-spot-trade-ratio" toml:"balancing-spot-trade-ratio"`
}

func NewDefaultConfig() Config {
	return Config{
		Level:                   encoding.LogLevel{Level: logging.InfoLevel},
		MinOfferAge:             2,
		MinBidAge:               2,
		BalancingSpotTradeRatio: 0.2,
	}
}
