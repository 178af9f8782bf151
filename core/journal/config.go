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
	"github.com/gridsingularity/gsy-e-sub001/config/encoding"
	"github.com/gridsingularity/gsy-e-sub001/logging"
)

const namedLogger = "journal"

// Config represents the configuration of the past market store.
type Config struct {
	Level   encoding.LogLevel `long:"log-level" toml:"level"`
	Enabled encoding.Bool     `long:"enabled" toml:"enabled" description:"Keep the frozen markets of past slots"`
	Path    string            `long:"path" toml:"path" description:"Directory of the past market store"`
	// Sync flushes every write to disk before returning.
	Sync encoding.Bool `long:"sync" toml:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		Level:   encoding.LogLevel{Level: logging.InfoLevel},
		Enabled: true,
		Path:    "journal",
		Sync:    false,
	}
}
