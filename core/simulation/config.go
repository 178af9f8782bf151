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

package simulation

import (
	"time"

	"github.com/gridsingularity/gsy-e-sub001/config/encoding"
	"github.com/gridsingularity/gsy-e-sub001/logging"
)

const namedLogger = "simulation"

// Config represents the configuration of the tick driver.
type Config struct {
	Level        encoding.LogLevel `long:"log-level" toml:"level"`
	SlotLength   encoding.Duration `long:"slot-length" toml:"slot-length" description:"Length of a market slot"`
	TicksPerSlot int               `long:"ticks-per-slot" toml:"ticks-per-slot" description:"Number of ticks run in every slot"`
	TopDown      encoding.Bool     `long:"top-down" toml:"top-down" description:"Tick parent areas before their children"`
	Balancing    encoding.Bool     `long:"balancing" toml:"balancing" description:"Open a balancing market next to every spot market"`
	// KeepPastSlots is the number of frozen slots kept in memory once
	// handed to the journal.
	KeepPastSlots int `long:"keep-past-slots" toml:"keep-past-slots"`
}

func NewDefaultConfig() Config {
	return Config{
		Level:         encoding.LogLevel{Level: logging.InfoLevel},
		SlotLength:    encoding.Duration{Duration: 15 * time.Minute},
		TicksPerSlot:  15,
		TopDown:       false,
		Balancing:     false,
		KeepPastSlots: 1,
	}
}

func (c Config) tickLength() time.Duration {
	if c.TicksPerSlot <= 0 {
		return c.SlotLength.Duration
	}
	return c.SlotLength.Duration / time.Duration(c.TicksPerSlot)
}
