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
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gridsingularity/gsy-e-sub001/broker"
	"github.com/gridsingularity/gsy-e-sub001/core/agents"
	"github.com/gridsingularity/gsy-e-sub001/core/events"
	"github.com/gridsingularity/gsy-e-sub001/core/market"
	"github.com/gridsingularity/gsy-e-sub001/logging"
	"github.com/gridsingularity/gsy-e-sub001/metrics"

	"github.com/pkg/errors"
)

// Broker is the event broker the markets publish to and the agents
// subscribe to.
type Broker interface {
	market.Broker
	Subscribe(s broker.Subscriber) int
	Unsubscribe(k int)
}

// Journal receives the snapshot of every market once its slot is over.
type Journal interface {
	Save(market.Snapshot) error
}

type edgeAgent interface {
	Tick(currentTick int)
	ID() int
}

// Simulation drives the markets of an area tree slot after slot. Every
// call that mutates a ledger runs under the simulation lock.
type Simulation struct {
	log      *logging.Logger
	cfg      Config
	mktCfg   market.Config
	agentCfg agents.Config
	root     *Area
	broker   Broker
	idgen    market.IDGenerator
	journal  Journal

	mu      sync.Mutex
	slot    time.Time
	open    bool
	tick    int
	agents  map[*Area][]edgeAgent
	byID    map[string]*market.Market
	slotIDs map[time.Time][]string
	past    []time.Time

	cfgMu   sync.Mutex
	nextCfg *Config
}

// New returns a simulation of the tree rooted at root. journal may be nil.
func New(
	log *logging.Logger,
	cfg Config,
	mktCfg market.Config,
	agentCfg agents.Config,
	root *Area,
	broker Broker,
	idgen market.IDGenerator,
	journal Journal,
) *Simulation {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Simulation{
		log:      log,
		cfg:      cfg,
		mktCfg:   mktCfg,
		agentCfg: agentCfg,
		root:     root,
		broker:   broker,
		idgen:    idgen,
		journal:  journal,
		agents:   map[*Area][]edgeAgent{},
		byID:     map[string]*market.Market{},
		slotIDs:  map[time.Time][]string{},
	}
}

// ReloadConf updates the log level, the other settings apply from the next
// slot on. It is called from tick listeners, so it never takes the
// simulation lock.
func (s *Simulation) ReloadConf(cfg Config) {
	s.log.Info("reloading configuration")
	if s.log.GetLevel() != cfg.Level.Get() {
		s.log.Info("updating log level",
			logging.String("old", s.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		s.log.SetLevel(cfg.Level.Get())
	}
	s.cfgMu.Lock()
	s.nextCfg = &cfg
	s.cfgMu.Unlock()
}

func (s *Simulation) applyConf() {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	if s.nextCfg != nil {
		s.cfg = *s.nextCfg
		s.nextCfg = nil
	}
}

func (s *Simulation) Root() *Area { return s.root }

// Slot returns the open slot.
func (s *Simulation) Slot() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slot, s.open
}

// MarketByID returns a spot or balancing market still held in memory.
func (s *Simulation) MarketByID(id string) (*market.Market, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	return m, ok
}

// Exclusive runs fn under the simulation lock, the only safe way for
// another goroutine to touch the ledgers.
func (s *Simulation) Exclusive(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

// Run cycles through slots starting at start until slots are done or ctx
// is cancelled, then closes the last slot.
func (s *Simulation) Run(ctx context.Context, start time.Time, slots int) error {
	for i := 0; i < slots; i++ {
		slot := start.Add(time.Duration(i) * s.cfg.SlotLength.Duration)
		if err := s.Cycle(slot); err != nil {
			return err
		}
		for tick := 0; tick < s.cfg.TicksPerSlot; tick++ {
			select {
			case <-ctx.Done():
				s.Close()
				return ctx.Err()
			default:
			}
			s.Tick(tick)
		}
	}
	s.Close()
	return nil
}

// Cycle closes the open slot and opens the markets and agents of slot,
// parents before children.
func (s *Simulation) Cycle(slot time.Time) error {
	defer metrics.StartTick("cycle")()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.open {
		s.closeSlot()
	}
	s.applyConf()

	var err error
	s.root.walk(true, func(a *Area) {
		if err != nil {
			return
		}
		err = s.openMarkets(a, slot)
	})
	if err != nil {
		return err
	}
	s.root.walk(true, func(a *Area) {
		if !a.IsRoot() {
			s.openAgents(a, slot)
		}
	})

	s.slot = slot
	s.open = true
	s.tick = 0
	metrics.LiveMarketsSet(len(s.slotIDs[slot]))

	s.log.Info("slot opened",
		logging.Time("slot", slot),
		logging.Int("markets", len(s.slotIDs[slot])),
	)
	s.broker.Send(events.NewMarketCycle(slot))
	return nil
}

func (s *Simulation) openMarkets(a *Area, slot time.Time) error {
	if _, ok := a.markets[slot]; ok {
		return errors.Errorf("area %s already has a market for %s", a.name, slot)
	}
	m := market.New(s.log, s.mktCfg, s.idgen.NextID(), a.name, slot, a.fees, s.broker, s.idgen)
	m.SetTime(0, slot)
	a.markets[slot] = m
	s.byID[m.ID()] = m
	s.slotIDs[slot] = append(s.slotIDs[slot], m.ID())

	if s.cfg.Balancing {
		b := market.NewBalancing(s.log, s.mktCfg, s.idgen.NextID(), a.name+" Balancing", slot, a.fees, s.broker, s.idgen, a.registry)
		b.SetTime(0, slot)
		a.balancing[slot] = b
		s.byID[b.ID()] = b.Market
		s.slotIDs[slot] = append(s.slotIDs[slot], b.ID())
	}
	return nil
}

func (s *Simulation) openAgents(a *Area, slot time.Time) {
	parent := a.parent
	spotName := "IAA " + a.name
	ma := agents.NewMarketAgent(s.log, s.agentCfg, spotName, a.name, a.markets[slot], parent.markets[slot])
	s.broker.Subscribe(ma)
	s.agents[a] = []edgeAgent{ma}

	if s.cfg.Balancing {
		ba := agents.NewBalancingAgent(s.log, s.agentCfg, "BA "+a.name, a.name, spotName, a.balancing[slot], parent.balancing[slot])
		s.broker.Subscribe(ba)
		s.agents[a] = append(s.agents[a], ba)
	}
}

// Tick advances the open slot: scripted orders are placed, the agents of
// every edge run in dispatch order, then every market matches.
func (s *Simulation) Tick(tick int) {
	defer metrics.StartTick("tick")()
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		s.log.Error("tick without an open slot", logging.Tick(tick))
		return
	}
	s.tick = tick
	now := s.slot.Add(time.Duration(tick) * s.cfg.tickLength())

	s.root.walk(true, func(a *Area) {
		a.markets[s.slot].SetTime(tick, now)
		if b, ok := a.balancing[s.slot]; ok {
			b.SetTime(tick, now)
		}
		s.placeScripted(a, tick)
	})

	s.root.walk(bool(s.cfg.TopDown), func(a *Area) {
		for _, ag := range s.agents[a] {
			ag.Tick(tick)
		}
	})

	matched := 0
	s.root.walk(bool(s.cfg.TopDown), func(a *Area) {
		m := a.markets[s.slot]
		if m.IsTradable() {
			matched += m.Match()
		}
	})

	if s.log.IsDebug() {
		s.log.Debug("tick done",
			logging.Tick(tick),
			logging.Time("now", now),
			logging.Int("matched", matched),
		)
	}
	s.broker.Send(events.NewTick(s.slot, tick))
}

func (s *Simulation) placeScripted(a *Area, tick int) {
	m := a.markets[s.slot]
	for _, o := range a.orders {
		if o.Tick != tick {
			continue
		}
		side, _ := o.side()
		if _, err := m.Place(side, o.Rate*o.Energy, o.Energy, o.trader()); err != nil {
			s.log.Error("could not place scripted order",
				logging.String("area", a.name),
				logging.String("trader", o.Trader),
				logging.Error(err),
			)
		}
	}
}

// Close freezes and journals the open slot.
func (s *Simulation) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		s.closeSlot()
	}
}

func (s *Simulation) closeSlot() {
	slot := s.slot
	for a, edge := range s.agents {
		for _, ag := range edge {
			s.broker.Unsubscribe(ag.ID())
		}
		delete(s.agents, a)
	}

	s.root.walk(true, func(a *Area) {
		if m, ok := a.markets[slot]; ok {
			m.Freeze()
			s.save(m.Snapshot())
		}
		if b, ok := a.balancing[slot]; ok {
			b.Freeze()
			s.save(b.Snapshot())
		}
	})
	s.open = false
	s.past = append(s.past, slot)
	s.log.Info("slot closed", logging.Time("slot", slot))

	keep := s.cfg.KeepPastSlots
	if keep < 0 {
		keep = 0
	}
	for len(s.past) > keep {
		s.dropSlot(s.past[0])
		s.past = s.past[1:]
	}
	metrics.LiveMarketsSet(0)
}

func (s *Simulation) save(snap market.Snapshot) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Save(snap); err != nil {
		s.log.Error("could not journal market",
			logging.MarketID(snap.ID),
			logging.Error(err),
		)
	}
}

func (s *Simulation) dropSlot(slot time.Time) {
	for _, id := range s.slotIDs[slot] {
		delete(s.byID, id)
	}
	delete(s.slotIDs, slot)
	s.root.walk(true, func(a *Area) { a.dropSlot(slot) })
}

// PastSlots returns the frozen slots still held in memory, oldest first.
func (s *Simulation) PastSlots() []time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]time.Time{}, s.past...)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
