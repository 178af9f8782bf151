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
	"fmt"

	"github.com/gridsingularity/gsy-e-sub001/core/events"
	"github.com/gridsingularity/gsy-e-sub001/core/types"
	"github.com/gridsingularity/gsy-e-sub001/logging"
)

// agent holds what market and balancing agents share: an identity, the two
// engines of an edge and the broker subscription.
type agent struct {
	log       *logging.Logger
	cfg       Config
	name      string
	traderID  string
	marketIDs map[string]struct{}
	up        *ForwardingEngine
	down      *ForwardingEngine
	subID     int
}

func newAgent(log *logging.Logger, cfg Config, name, traderID string, marketIDs ...string) *agent {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	a := &agent{
		log:       log.With(logging.AgentName(name)),
		cfg:       cfg,
		name:      name,
		traderID:  traderID,
		marketIDs: make(map[string]struct{}, len(marketIDs)),
	}
	for _, id := range marketIDs {
		a.marketIDs[id] = struct{}{}
	}
	return a
}

func (a *agent) Name() string { return a.name }

// TraderID is the participant id the agent trades under.
func (a *agent) TraderID() string { return a.traderID }

func (a *agent) trader(origin types.TraderDetails) types.TraderDetails {
	return origin.OnBehalfOf(a.name, a.traderID)
}

func (a *agent) usable(id string) bool {
	return !a.up.Has(id) && !a.down.Has(id)
}

// Up is the engine forwarding from the lower market to the higher one.
func (a *agent) Up() *ForwardingEngine { return a.up }

// Down is the engine forwarding from the higher market to the lower one.
func (a *agent) Down() *ForwardingEngine { return a.down }

func (a *agent) Types() []events.Type {
	return events.MarketTypes()
}

func (a *agent) SetID(id int) { a.subID = id }
func (a *agent) ID() int      { return a.subID }

func (a *agent) ReloadConf(cfg Config) {
	a.log.Info("reloading configuration")
	if a.log.GetLevel() != cfg.Level.Get() {
		a.log.Info("updating log level",
			logging.String("old", a.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		a.log.SetLevel(cfg.Level.Get())
	}
	// ages apply to engines created for later slots
	a.cfg = cfg
}

func (a *agent) concerns(evt events.Event) (events.MarketEvent, bool) {
	me, ok := evt.(events.MarketEvent)
	if !ok {
		return nil, false
	}
	_, ok = a.marketIDs[me.MarketID()]
	return me, ok
}

func (a *agent) dispatch(evt events.Event) {
	if _, ok := a.concerns(evt); !ok {
		return
	}
	a.up.push(evt)
	a.down.push(evt)
}

func (a *agent) tickEngines(currentTick int) {
	a.up.Tick(currentTick)
	a.down.Tick(currentTick)
}

// MarketAgent connects the market of an area with the market of its parent
// for one slot, forwarding orders both ways.
type MarketAgent struct {
	*agent
	lower  Market
	higher Market
}

// NewMarketAgent returns the agent of the edge between lower, the market of
// a child area, and higher, the market of its parent.
func NewMarketAgent(log *logging.Logger, cfg Config, name, traderID string, lower, higher Market) *MarketAgent {
	a := newAgent(log, cfg, name, traderID, lower.ID(), higher.ID())
	a.up = newForwardingEngine(a.log, fmt.Sprintf("%s %s->%s", name, lower.Name(), higher.Name()), a, lower, higher, cfg)
	a.down = newForwardingEngine(a.log, fmt.Sprintf("%s %s->%s", name, higher.Name(), lower.Name()), a, higher, lower, cfg)
	return &MarketAgent{
		agent:  a,
		lower:  lower,
		higher: higher,
	}
}

func (m *MarketAgent) Lower() Market  { return m.lower }
func (m *MarketAgent) Higher() Market { return m.higher }

// Tick runs both engines.
func (m *MarketAgent) Tick(currentTick int) {
	m.tickEngines(currentTick)
}

// Push receives the events of the broker.
func (m *MarketAgent) Push(evts ...events.Event) {
	for _, evt := range evts {
		m.dispatch(evt)
	}
}

func (m *MarketAgent) String() string {
	return fmt.Sprintf("MarketAgent{%s %s}", m.name, m.lower.TimeSlot().Format("15:04"))
}
