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

	"github.com/gridsingularity/gsy-e-sub001/core/fee"
	"github.com/gridsingularity/gsy-e-sub001/core/market"
	"github.com/gridsingularity/gsy-e-sub001/core/types"

	"github.com/pkg/errors"
)

var (
	ErrEmptyAreaName     = errors.New("area name cannot be empty")
	ErrDuplicateAreaName = errors.New("area names must be unique")
	ErrUnknownSide       = errors.New("order side must be offer or bid")
)

// AreaConfig is the toml description of an area and its children.
type AreaConfig struct {
	Name string     `toml:"name"`
	Fee  fee.Config `toml:"fee"`
	// Devices are the participants allowed to place balancing offers.
	Devices  []string      `toml:"devices"`
	Orders   []OrderConfig `toml:"orders"`
	Children []AreaConfig  `toml:"children"`
}

// OrderConfig is an order placed by a scripted participant of an area at
// the same tick of every slot.
type OrderConfig struct {
	Trader string  `toml:"trader"`
	Side   string  `toml:"side"`
	Rate   float64 `toml:"rate"`
	Energy float64 `toml:"energy"`
	Tick   int     `toml:"tick"`
}

func (o OrderConfig) side() (types.Side, error) {
	switch o.Side {
	case "offer", "sell":
		return types.SideSell, nil
	case "bid", "buy":
		return types.SideBuy, nil
	default:
		return 0, errors.Wrapf(ErrUnknownSide, "got %q", o.Side)
	}
}

func (o OrderConfig) trader() types.TraderDetails {
	caps := types.CapabilityConsumer
	if o.Side == "offer" || o.Side == "sell" {
		caps = types.CapabilityProducer
	}
	return types.NewTrader(o.Trader, o.Trader, caps)
}

// Area is a node of the grid tree. Every area runs one spot market per
// slot, and a balancing market when balancing is enabled.
type Area struct {
	name     string
	fees     fee.Grid
	registry market.DeviceRegistry
	orders   []OrderConfig
	parent   *Area
	children []*Area

	markets   map[time.Time]*market.Market
	balancing map[time.Time]*market.BalancingMarket
}

// NewArea builds the tree described by cfg.
func NewArea(cfg AreaConfig) (*Area, error) {
	seen := map[string]struct{}{}
	return newArea(cfg, nil, seen)
}

func newArea(cfg AreaConfig, parent *Area, seen map[string]struct{}) (*Area, error) {
	if cfg.Name == "" {
		return nil, ErrEmptyAreaName
	}
	if _, ok := seen[cfg.Name]; ok {
		return nil, errors.Wrapf(ErrDuplicateAreaName, "area %s", cfg.Name)
	}
	seen[cfg.Name] = struct{}{}

	fees, err := fee.New(cfg.Fee)
	if err != nil {
		return nil, errors.Wrapf(err, "area %s", cfg.Name)
	}
	for _, o := range cfg.Orders {
		if _, err := o.side(); err != nil {
			return nil, errors.Wrapf(err, "area %s trader %s", cfg.Name, o.Trader)
		}
	}

	a := &Area{
		name:      cfg.Name,
		fees:      fees,
		registry:  market.NewDeviceRegistry(cfg.Devices...),
		orders:    cfg.Orders,
		parent:    parent,
		markets:   map[time.Time]*market.Market{},
		balancing: map[time.Time]*market.BalancingMarket{},
	}
	for _, c := range cfg.Children {
		child, err := newArea(c, a, seen)
		if err != nil {
			return nil, err
		}
		a.children = append(a.children, child)
	}
	return a, nil
}

func (a *Area) Name() string      { return a.name }
func (a *Area) Fees() fee.Grid    { return a.fees }
func (a *Area) Parent() *Area     { return a.parent }
func (a *Area) Children() []*Area { return a.children }
func (a *Area) IsRoot() bool      { return a.parent == nil }
func (a *Area) HasChildren() bool { return len(a.children) > 0 }

// Market returns the spot market of the area for a slot.
func (a *Area) Market(slot time.Time) (*market.Market, bool) {
	m, ok := a.markets[slot]
	return m, ok
}

// BalancingMarket returns the balancing market of the area for a slot.
func (a *Area) BalancingMarket(slot time.Time) (*market.BalancingMarket, bool) {
	m, ok := a.balancing[slot]
	return m, ok
}

// Find returns the area with the given name in the subtree of a.
func (a *Area) Find(name string) (*Area, bool) {
	var found *Area
	a.walk(true, func(n *Area) {
		if found == nil && n.name == name {
			found = n
		}
	})
	return found, found != nil
}

// walk visits the subtree parents first, or children first when topDown
// is false.
func (a *Area) walk(topDown bool, fn func(*Area)) {
	if topDown {
		fn(a)
	}
	for _, c := range a.children {
		c.walk(topDown, fn)
	}
	if !topDown {
		fn(a)
	}
}

func (a *Area) dropSlot(slot time.Time) {
	delete(a.markets, slot)
	delete(a.balancing, slot)
}
