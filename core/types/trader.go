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

package types

import "strings"

// Capability is a set of tags describing what kind of participant placed an
// order. It is carried explicitly so reporting never has to guess from names.
type Capability uint8

const (
	CapabilityConsumer Capability = 1 << iota
	CapabilityProducer
	CapabilityStorage
	// CapabilityAgent marks orders mirrored by a market agent.
	CapabilityAgent
)

var capabilityNames = []struct {
	c    Capability
	name string
}{
	{CapabilityConsumer, "consumer"},
	{CapabilityProducer, "producer"},
	{CapabilityStorage, "storage"},
	{CapabilityAgent, "agent"},
}

// Has returns true if every tag of other is set.
func (c Capability) Has(other Capability) bool {
	return c&other == other && other != 0
}

func (c Capability) String() string {
	names := make([]string, 0, len(capabilityNames))
	for _, cn := range capabilityNames {
		if c.Has(cn.c) {
			names = append(names, cn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// TraderDetails identifies both the immediate owner of an order and the
// participant it originates from. For an order placed directly by a device
// both are the same, for a mirrored order the owner is the agent.
type TraderDetails struct {
	Name         string
	ID           string
	Origin       string
	OriginID     string
	Capabilities Capability
}

// NewTrader returns the details of a participant trading on its own behalf.
func NewTrader(name, id string, caps Capability) TraderDetails {
	return TraderDetails{
		Name:         name,
		ID:           id,
		Origin:       name,
		OriginID:     id,
		Capabilities: caps,
	}
}

// OnBehalfOf returns details for an agent acting for the origin of t.
func (t TraderDetails) OnBehalfOf(agentName, agentID string) TraderDetails {
	return TraderDetails{
		Name:         agentName,
		ID:           agentID,
		Origin:       t.Origin,
		OriginID:     t.OriginID,
		Capabilities: CapabilityAgent,
	}
}
