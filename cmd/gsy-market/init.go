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

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gridsingularity/gsy-e-sub001/config"
	"github.com/gridsingularity/gsy-e-sub001/logging"

	"github.com/jessevdk/go-flags"
)

type InitCmd struct {
	Output string `short:"o" long:"output" default:"gsy-market.toml" description:"Path of the configuration file to write"`
	Force  bool   `short:"f" long:"force" description:"Overwrite an existing configuration"`
}

var initCmd InitCmd

func (opts *InitCmd) Execute(_ []string) error {
	logger := logging.NewLoggerFromConfig(logging.NewDefaultConfig())
	defer logger.AtExit()

	if _, err := os.Stat(opts.Output); err == nil && !opts.Force {
		return fmt.Errorf("configuration already exists at `%s` please remove it first or re-run using -f", opts.Output)
	}

	if err := config.Save(opts.Output, config.NewDefaultConfig()); err != nil {
		return fmt.Errorf("couldn't save configuration file: %w", err)
	}

	logger.Info("configuration generated successfully", logging.String("path", opts.Output))
	return nil
}

func Init(ctx context.Context, parser *flags.Parser) error {
	initCmd = InitCmd{}

	short := "Writes a default configuration"
	long := "Generate a configuration file with the defaults of every package and a sample grid"

	_, err := parser.AddCommand("init", short, long, &initCmd)
	return err
}
