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

package fee

import (
	"github.com/pkg/errors"
)

// ErrNegativeFee signals a fee configuration with a negative component.
var ErrNegativeFee = errors.New("grid fees cannot be negative")

// Config holds the grid fee charged when energy enters a market.
type Config struct {
	// Percentage is applied to the price of orders entering the market.
	Percentage float64 `long:"percentage" toml:"percentage" description:"Grid fee in percent of the order price"`
	// ConstantRate is a flat fee per kWh.
	ConstantRate float64 `long:"constant-rate" toml:"constant-rate" description:"Flat grid fee per kWh"`
}

// NewDefaultConfig returns a fee free configuration.
func NewDefaultConfig() Config {
	return Config{}
}

// Grid applies the fee configured for one market.
type Grid struct {
	percentage   float64
	constantRate float64
}

// New validates the configuration and returns the fee model.
func New(cfg Config) (Grid, error) {
	if cfg.Percentage < 0 || cfg.ConstantRate < 0 {
		return Grid{}, ErrNegativeFee
	}
	return Grid{
		percentage:   cfg.Percentage,
		constantRate: cfg.ConstantRate,
	}, nil
}

// Percentage returns the configured percentage.
func (g Grid) Percentage() float64 {
	return g.percentage
}

// IsZero returns true if the model never changes a price.
func (g Grid) IsZero() bool {
	return g.percentage == 0 && g.constantRate == 0
}

// Apply returns the price of energy once the fee is added on top.
func (g Grid) Apply(price, energy float64) float64 {
	return price*(1+g.percentage/100) + g.constantRate*energy
}

// Remove is the inverse of Apply: it returns the price before the fee was
// added.
func (g Grid) Remove(price, energy float64) float64 {
	return (price - g.constantRate*energy) / (1 + g.percentage/100)
}

// Fee returns the fee part of a price that already includes it.
func (g Grid) Fee(price, energy float64) float64 {
	return price - g.Remove(price, energy)
}
