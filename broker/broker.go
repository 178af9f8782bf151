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

package broker

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gridsingularity/gsy-e-sub001/core/events"
	"github.com/gridsingularity/gsy-e-sub001/logging"
)

// Subscriber interface allows pushing values to subscribers. Events are
// pushed synchronously on the goroutine that sent them.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/subscriber_mock.go -package mocks github.com/gridsingularity/gsy-e-sub001/broker Subscriber
type Subscriber interface {
	Push(val ...events.Event)
	Types() []events.Type
	SetID(id int)
	ID() int
}

// Broker fans events out to subscribers. Dispatch is synchronous: Send only
// returns once every subscriber interested in the event has handled it,
// including the events those subscribers sent in turn.
type Broker struct {
	log *logging.Logger

	mu    sync.RWMutex
	tSubs map[events.Type]map[int]Subscriber
	// these fields ensure a unique ID for all subscribers, regardless of what event types they subscribe to
	subs    map[int]Subscriber
	keys    []int
	nextKey int

	seq uint64
}

// New creates a new broker.
func New(log *logging.Logger, config Config) *Broker {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Broker{
		log:   log,
		tSubs: map[events.Type]map[int]Subscriber{},
		subs:  map[int]Subscriber{},
		keys:  []int{},
	}
}

// ReloadConf updates the log level of the broker.
func (b *Broker) ReloadConf(cfg Config) {
	b.log.Info("reloading configuration")
	if b.log.GetLevel() != cfg.Level.Get() {
		b.log.Info("updating log level",
			logging.String("old", b.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		b.log.SetLevel(cfg.Level.Get())
	}
}

// Send delivers the event to the subscribers of its type and to the
// subscribers of all events, in subscription order.
func (b *Broker) Send(evt events.Event) {
	evt.SetSequenceID(atomic.AddUint64(&b.seq, 1))

	for _, sub := range b.subscribersFor(evt.Type()) {
		if !b.isSubscribed(sub.ID()) {
			// unsubscribed by an earlier subscriber of the same event
			continue
		}
		sub.Push(evt)
	}
}

// SendBatch sends the events one by one.
func (b *Broker) SendBatch(evts []events.Event) {
	for _, e := range evts {
		b.Send(e)
	}
}

func (b *Broker) subscribersFor(t events.Type) []Subscriber {
	b.mu.RLock()
	defer b.mu.RUnlock()

	keys := make([]int, 0, len(b.tSubs[t])+len(b.tSubs[events.All]))
	for k := range b.tSubs[t] {
		keys = append(keys, k)
	}
	if t != events.All {
		for k := range b.tSubs[events.All] {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)

	subs := make([]Subscriber, 0, len(keys))
	for _, k := range keys {
		subs = append(subs, b.subs[k])
	}
	return subs
}

func (b *Broker) isSubscribed(k int) bool {
	b.mu.RLock()
	_, ok := b.subs[k]
	b.mu.RUnlock()
	return ok
}

// Subscribe registers a new subscriber, returning the key.
func (b *Broker) Subscribe(s Subscriber) int {
	b.mu.Lock()
	k := b.subscribe(s)
	b.mu.Unlock()
	return k
}

func (b *Broker) SubscribeBatch(subs ...Subscriber) {
	b.mu.Lock()
	for _, s := range subs {
		b.subscribe(s)
	}
	b.mu.Unlock()
}

func (b *Broker) subscribe(s Subscriber) int {
	b.nextKey++
	k := b.nextKey
	s.SetID(k)
	b.subs[k] = s
	b.keys = append(b.keys, k)

	types := s.Types()
	if len(types) == 0 {
		types = []events.Type{events.All}
	}
	for _, t := range types {
		if _, ok := b.tSubs[t]; !ok {
			b.tSubs[t] = map[int]Subscriber{}
		}
		b.tSubs[t][k] = s
	}
	b.log.Debug("new subscriber",
		logging.Int("id", k),
		logging.Int("event-types", len(types)),
	)
	return k
}

// Unsubscribe removes subscriber from broker
// this does not change the state of the subscriber.
func (b *Broker) Unsubscribe(k int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[k]; !ok {
		return
	}
	delete(b.subs, k)
	for t, subs := range b.tSubs {
		delete(subs, k)
		if len(subs) == 0 {
			delete(b.tSubs, t)
		}
	}
	for i, key := range b.keys {
		if key == k {
			b.keys = append(b.keys[:i], b.keys[i+1:]...)
			break
		}
	}
}

// Count returns the number of live subscribers.
func (b *Broker) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.keys)
}
