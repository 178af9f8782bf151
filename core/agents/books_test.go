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

package agents

import (
	"testing"

	"github.com/gridsingularity/gsy-e-sub001/core/types"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestOutcomeOf(t *testing.T) {
	outcome, err := outcomeOf(nil)
	assert.NoError(t, err)
	assert.Equal(t, OutcomeApplied, outcome)

	outcome, err = outcomeOf(errors.Wrap(types.ErrOrderNotFound, "offer abc"))
	assert.NoError(t, err)
	assert.Equal(t, OutcomeAlreadyResolved, outcome)
	assert.Equal(t, "already-resolved", outcome.String())

	_, err = outcomeOf(types.ErrInvalidTrade)
	assert.ErrorIs(t, err, types.ErrInvalidTrade)
}
