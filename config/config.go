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

//lint:file-ignore SA5008 duplicated struct tags are ok for config

package config

import (
	"bytes"
	"os"

	"github.com/gridsingularity/gsy-e-sub001/broker"
	"github.com/gridsingularity/gsy-e-sub001/core/agents"
	"github.com/gridsingularity/gsy-e-sub001/core/journal"
	"github.com/gridsingularity/gsy-e-sub001/core/market"
	"github.com/gridsingularity/gsy-e-sub001/core/simulation"
	"github.com/gridsingularity/gsy-e-sub001/logging"
	"github.com/gridsingularity/gsy-e-sub001/metrics"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config ties together all other application configuration types.
type Config struct {
	Logging    logging.Config    `group:"Logging" namespace:"logging" toml:"logging"`
	Broker     broker.Config     `group:"Broker" namespace:"broker" toml:"broker"`
	Market     market.Config     `group:"Market" namespace:"market" toml:"market"`
	Agents     agents.Config     `group:"Agents" namespace:"agents" toml:"agents"`
	Simulation simulation.Config `group:"Simulation" namespace:"simulation" toml:"simulation"`
	Journal    journal.Config    `group:"Journal" namespace:"journal" toml:"journal"`
	Metrics    metrics.Config    `group:"Metrics" namespace:"metrics" toml:"metrics"`

	// Grid is the area tree, it can only be given in the file.
	Grid simulation.AreaConfig `toml:"grid" no-flag:"true"`
}

// NewDefaultConfig returns the default configuration of every package and a
// single house under a grid area.
func NewDefaultConfig() Config {
	return Config{
		Logging:    logging.NewDefaultConfig(),
		Broker:     broker.NewDefaultConfig(),
		Market:     market.NewDefaultConfig(),
		Agents:     agents.NewDefaultConfig(),
		Simulation: simulation.NewDefaultConfig(),
		Journal:    journal.NewDefaultConfig(),
		Metrics:    metrics.NewDefaultConfig(),
		Grid: simulation.AreaConfig{
			Name: "Grid",
			Children: []simulation.AreaConfig{{
				Name: "House 1",
				Orders: []simulation.OrderConfig{
					{Trader: "PV", Side: "offer", Rate: 20, Energy: 1},
					{Trader: "Load", Side: "bid", Rate: 30, Energy: 0.5},
				},
			}},
		},
	}
}

// Read loads the file at path over the default configuration.
func Read(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := decodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "could not read configuration %s", path)
	}
	if _, err := toml.Decode(string(buf), cfg); err != nil {
		return errors.Wrapf(err, "could not decode configuration %s", path)
	}
	return nil
}

// Save writes cfg to path as toml.
func Save(path string, cfg Config) error {
	buf := bytes.Buffer{}
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return errors.Wrap(err, "could not encode configuration")
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}
