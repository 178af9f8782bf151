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

	"github.com/pkg/errors"
)

// ValidateBidOfferMatch checks a recommendation against the current state of
// its bid and offer. Every failure wraps types.ErrInvalidPairing.
func ValidateBidOfferMatch(bid, offer types.Order, clearingRate, selectedEnergy float64) error {
	tol := types.FloatingPointTolerance
	switch {
	case selectedEnergy <= 0:
		return errors.Wrapf(types.ErrInvalidPairing, "selected energy %f is not positive", selectedEnergy)
	case selectedEnergy > bid.Energy+tol:
		return errors.Wrapf(types.ErrInvalidPairing,
			"selected energy %f exceeds bid %s energy %f", selectedEnergy, bid.ID, bid.Energy)
	case selectedEnergy > offer.Energy+tol:
		return errors.Wrapf(types.ErrInvalidPairing,
			"selected energy %f exceeds offer %s energy %f", selectedEnergy, offer.ID, offer.Energy)
	case isSelfTrade(bid, offer):
		return errors.Wrapf(types.ErrInvalidPairing,
			"bid %s and offer %s belong to %s", bid.ID, offer.ID, bid.Trader.Name)
	case bid.EnergyRate()+tol < clearingRate:
		return errors.Wrapf(types.ErrInvalidPairing,
			"bid %s rate %f is below clearing rate %f", bid.ID, bid.EnergyRate(), clearingRate)
	case clearingRate < offer.EnergyRate()-tol:
		return errors.Wrapf(types.ErrInvalidPairing,
			"clearing rate %f is below offer %s rate %f", clearingRate, offer.ID, offer.EnergyRate())
	case !RequirementsSatisfied(offer, bid):
		return errors.Wrapf(types.ErrInvalidPairing,
			"requirements of bid %s and offer %s are not satisfied", bid.ID, offer.ID)
	}
	return nil
}
