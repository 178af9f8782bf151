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

package logging

import (
	"time"

	"github.com/gridsingularity/gsy-e-sub001/core/types"

	"go.uber.org/zap"
)

// Int constructs a field with the given key and value.
func Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

// Float64 constructs a field with the given key and value.
func Float64(key string, val float64) zap.Field {
	return zap.Float64(key, val)
}

// String constructs a field with the given key and value.
func String(key string, val string) zap.Field {
	return zap.String(key, val)
}

// Time constructs a field with the given key and value.
func Time(key string, val time.Time) zap.Field {
	return zap.Time(key, val)
}

// Error constructs a field with the given key and value.
func Error(val error) zap.Field {
	return zap.Error(val)
}

// MarketID constructs a field with the market id.
func MarketID(id string) zap.Field {
	return zap.String("market-id", id)
}

// OrderID constructs a field with the order id.
func OrderID(id string) zap.Field {
	return zap.String("order-id", id)
}

// AgentName constructs a field with the name of a market agent.
func AgentName(name string) zap.Field {
	return zap.String("agent", name)
}

// Tick constructs a field with the current tick.
func Tick(tick int) zap.Field {
	return zap.Int("tick", tick)
}

// Order constructs a field with the given order.
func Order(o types.Order) zap.Field {
	return zap.String("order", o.String())
}

// Trade constructs a field with the given trade.
func Trade(t types.Trade) zap.Field {
	return zap.String("trade", t.String())
}
