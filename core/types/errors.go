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

import "github.com/pkg/errors"

var (
	// ErrInvalidOrder signals an order with non positive energy or an
	// otherwise malformed order at placement time.
	ErrInvalidOrder = errors.New("invalid order")
	// ErrNegativePrice signals an order whose price after fees is negative.
	ErrNegativePrice = errors.New("negative price after fees")
	// ErrOrderNotFound signals an operation on an id not present in the market.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTrade signals an acceptance of non positive energy or of more
	// energy than the order holds.
	ErrInvalidTrade = errors.New("invalid trade")
	// ErrInvalidPairing signals a bid/offer recommendation that failed validation.
	ErrInvalidPairing = errors.New("invalid bid offer pairing")
	// ErrMarketReadOnly signals a mutation attempted on a past market.
	ErrMarketReadOnly = errors.New("market is read only")
	// ErrInvalidBalancingTrade signals a balancing acceptance whose energy
	// sign or magnitude does not fit the balancing offer.
	ErrInvalidBalancingTrade = errors.New("invalid balancing trade")
	// ErrDeviceNotInRegistry signals a balancing offer from an unregistered device.
	ErrDeviceNotInRegistry = errors.New("device not in balancing registry")
	// ErrUnsupportedOrder signals an operation the market type does not provide.
	ErrUnsupportedOrder = errors.New("operation not supported by this market type")
)
