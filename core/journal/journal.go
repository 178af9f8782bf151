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

package journal

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/gridsingularity/gsy-e-sub001/core/market"
	"github.com/gridsingularity/gsy-e-sub001/logging"

	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

var (
	// ErrSnapshotNotFound is returned when no market was stored under an id.
	ErrSnapshotNotFound = errors.New("market snapshot not found")

	marketPrefix = []byte("m/")
	indexPrefix  = []byte("i/")
)

// Store keeps the snapshots of frozen markets, keyed by slot then market id
// so a whole slot is read with one range scan.
type Store struct {
	log  *logging.Logger
	cfg  Config
	db   *pebble.DB
	opts *pebble.WriteOptions
}

// New opens (or creates) the store at cfg.Path.
func New(log *logging.Logger, cfg Config) (*Store, error) {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	db, err := pebble.Open(cfg.Path, &pebble.Options{
		Logger: log,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "could not open journal at %s", cfg.Path)
	}

	opts := pebble.NoSync
	if cfg.Sync {
		opts = pebble.Sync
	}
	return &Store{
		log:  log,
		cfg:  cfg,
		db:   db,
		opts: opts,
	}, nil
}

func (s *Store) ReloadConf(cfg Config) {
	s.log.Info("reloading configuration")
	if s.log.GetLevel() != cfg.Level.Get() {
		s.log.Info("updating log level",
			logging.String("old", s.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		s.log.SetLevel(cfg.Level.Get())
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the snapshot of a frozen market, replacing any earlier
// snapshot of the same market.
func (s *Store) Save(snap market.Snapshot) error {
	value, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrapf(err, "could not encode market %s", snap.ID)
	}

	key := marketKey(snap.TimeSlot, snap.ID)
	batch := s.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(key, value, nil); err != nil {
		return err
	}
	if err := batch.Set(indexKey(snap.ID), key, nil); err != nil {
		return err
	}
	if err := batch.Commit(s.opts); err != nil {
		return errors.Wrapf(err, "could not store market %s", snap.ID)
	}

	s.log.Debug("market stored",
		logging.MarketID(snap.ID),
		logging.String("name", snap.Name),
		logging.Time("slot", snap.TimeSlot),
		logging.Int("trades", len(snap.Trades)),
	)
	return nil
}

// Get returns the snapshot of the market with the given id.
func (s *Store) Get(id string) (market.Snapshot, error) {
	key, err := s.get(indexKey(id))
	if err != nil {
		return market.Snapshot{}, errors.Wrapf(err, "market %s", id)
	}
	value, err := s.get(key)
	if err != nil {
		return market.Snapshot{}, errors.Wrapf(err, "market %s", id)
	}
	return decode(value)
}

func (s *Store) get(key []byte) ([]byte, error) {
	value, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return bytes.Clone(value), nil
}

// Slot returns the snapshots of every market of a slot, ordered by id.
func (s *Store) Slot(slot time.Time) ([]market.Snapshot, error) {
	prefix := slotPrefix(slot)
	return s.scan(prefix, upperBound(prefix))
}

// Between returns the snapshots of the slots in [from, to).
func (s *Store) Between(from, to time.Time) ([]market.Snapshot, error) {
	return s.scan(slotPrefix(from), slotPrefix(to))
}

func (s *Store) scan(lower, upper []byte) ([]market.Snapshot, error) {
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	if err != nil {
		return nil, err
	}
	defer it.Close()

	out := []market.Snapshot{}
	for it.First(); it.Valid(); it.Next() {
		snap, err := decode(it.Value())
		if err != nil {
			return nil, errors.Wrapf(err, "key %x", it.Key())
		}
		out = append(out, snap)
	}
	return out, it.Error()
}

func decode(value []byte) (market.Snapshot, error) {
	snap := market.Snapshot{}
	if err := json.Unmarshal(value, &snap); err != nil {
		return snap, errors.Wrap(err, "could not decode market snapshot")
	}
	return snap, nil
}

// slotPrefix is m/<big endian unix nanos>/ so keys sort by slot.
func slotPrefix(slot time.Time) []byte {
	key := make([]byte, 0, len(marketPrefix)+9)
	key = append(key, marketPrefix...)
	key = binary.BigEndian.AppendUint64(key, uint64(slot.UnixNano()))
	return append(key, '/')
}

func marketKey(slot time.Time, id string) []byte {
	return append(slotPrefix(slot), id...)
}

func indexKey(id string) []byte {
	key := make([]byte, 0, len(indexPrefix)+len(id))
	key = append(key, indexPrefix...)
	return append(key, id...)
}

func upperBound(prefix []byte) []byte {
	end := bytes.Clone(prefix)
	end[len(end)-1]++
	return end
}
