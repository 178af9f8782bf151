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
	"github.com/gridsingularity/gsy-e-sub001/config/encoding"
	"github.com/gridsingularity/gsy-e-sub001/core/types"
	"github.com/gridsingularity/gsy-e-sub001/logging"
)

const namedLogger = "market"

// Config represents the configuration of the markets.
type Config struct {
	Level encoding.LogLevel `long:"log-level" toml:"level"`
	Type  types.MarketType  `long:"type" toml:"type" description:"one-sided, pay-as-bid or pay-as-clear"`
	// MaxMatchingPasses bounds how many times Match reruns the algorithm
	// over the residuals of the previous pass.
	MaxMatchingPasses int `long:"max-matching-passes" toml:"max-matching-passes"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:             encoding.LogLevel{Level: logging.InfoLevel},
		Type:              types.MarketTypePayAsBid,
		MaxMatchingPasses: 32,
	}
}
