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

package idgeneration

import (
	"encoding/hex"

	"github.com/gridsingularity/gsy-e-sub001/libs/crypto"

	uuid "github.com/satori/go.uuid"
)

// IDGenerator produces a deterministic chain of ids from a root id, each id
// being the hash of the previous one. No mutex required, ledgers are
// mutated sequentially under the process lock.
type IDGenerator struct {
	nextIDBytes []byte
}

// New returns a deterministic generator rooted at the given hex id.
func New(rootID string) *IDGenerator { //revive:disable:unexported-return
	nextIDBytes, err := hex.DecodeString(rootID)
	if err != nil {
		panic("failed to create new deterministic id generator: " + err.Error())
	}

	return &IDGenerator{
		nextIDBytes: nextIDBytes,
	}
}

// NewFromSeed returns a deterministic generator rooted at the hash of seed.
func NewFromSeed(seed string) *IDGenerator {
	return &IDGenerator{
		nextIDBytes: crypto.Hash([]byte(seed)),
	}
}

func (i *IDGenerator) NextID() string {
	if i == nil {
		panic("id generator instance is not initialised")
	}

	nextID := hex.EncodeToString(i.nextIDBytes)
	i.nextIDBytes = crypto.Hash(i.nextIDBytes)
	return nextID
}

// UUIDGenerator hands out random version 4 uuids.
type UUIDGenerator struct{}

func NewUUID() UUIDGenerator {
	return UUIDGenerator{}
}

func (UUIDGenerator) NextID() string {
	return uuid.NewV4().String()
}
