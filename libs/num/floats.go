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

package num

import (
	"math"

	"github.com/gridsingularity/gsy-e-sub001/core/types"

	"github.com/shopspring/decimal"
)

// IsClose compares two floats with the market tolerance.
func IsClose(a, b float64) bool {
	return math.Abs(a-b) <= types.FloatingPointTolerance
}

// LessOrClose returns true if a <= b within the market tolerance.
func LessOrClose(a, b float64) bool {
	return a <= b+types.FloatingPointTolerance
}

// IsZero returns true if a is zero within the market tolerance.
func IsZero(a float64) bool {
	return math.Abs(a) <= types.FloatingPointTolerance
}

// Decimal converts a float to a decimal for accumulation.
func Decimal(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Float converts an accumulated decimal back to a float.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
