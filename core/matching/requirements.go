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

package matching

import (
	"github.com/gridsingularity/gsy-e-sub001/core/types"
)

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v && v != "" {
			return true
		}
	}
	return false
}

// tradingPartnersSatisfied holds if no partner is listed or if either side
// of the pair, directly or through its origin, is one of the partners.
func tradingPartnersSatisfied(partners []string, offer, bid types.Order) bool {
	if len(partners) == 0 {
		return true
	}
	return contains(partners, bid.Trader.ID) ||
		contains(partners, bid.Trader.OriginID) ||
		contains(partners, offer.Trader.ID) ||
		contains(partners, offer.Trader.OriginID)
}

// energyTypeSatisfied holds if no type is listed or if the offer carries one
// of the listed types.
func energyTypeSatisfied(energyTypes []string, offer types.Order) bool {
	return len(energyTypes) == 0 || contains(energyTypes, offer.Attributes.EnergyType)
}

func offerRequirementSatisfied(r types.Requirement, offer, bid types.Order) bool {
	if len(r.EnergyTypes) > 0 {
		// offers cannot constrain the energy type of the bid
		return false
	}
	return tradingPartnersSatisfied(r.TradingPartners, offer, bid)
}

func bidRequirementSatisfied(r types.Requirement, offer, bid types.Order) bool {
	return tradingPartnersSatisfied(r.TradingPartners, offer, bid) &&
		energyTypeSatisfied(r.EnergyTypes, offer)
}

// RequirementsSatisfied checks the requirements of both sides of a pair. A
// side without requirements is satisfied, otherwise at least one of its
// requirements must hold in full.
func RequirementsSatisfied(offer, bid types.Order) bool {
	offerOK := len(offer.Requirements) == 0
	for _, r := range offer.Requirements {
		if offerRequirementSatisfied(r, offer, bid) {
			offerOK = true
			break
		}
	}

	bidOK := len(bid.Requirements) == 0
	for _, r := range bid.Requirements {
		if bidRequirementSatisfied(r, offer, bid) {
			bidOK = true
			break
		}
	}
	return offerOK && bidOK
}
