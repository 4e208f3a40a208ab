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

package encoding_test

import (
	"testing"
	"time"

	"code.vegaprotocol.io/marketplace/libs/config/encoding"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDurationText(t *testing.T) {
	var d encoding.Duration
	require.NoError(t, d.UnmarshalText([]byte("72h")))
	assert.Equal(t, 72*time.Hour, d.Get())

	out, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "72h0m0s", string(out))

	assert.Error(t, d.UnmarshalFlag("three days"))
}

func TestLogLevelText(t *testing.T) {
	var l encoding.LogLevel
	require.NoError(t, l.UnmarshalFlag("debug"))
	assert.Equal(t, logging.DebugLevel, l.Get())

	out, err := l.MarshalText()
	require.NoError(t, err)
	// round trips through ParseLevel
	var back encoding.LogLevel
	require.NoError(t, back.UnmarshalText(out))
	assert.Equal(t, l, back)
}

func TestBoolFlag(t *testing.T) {
	var b encoding.Bool
	require.NoError(t, b.UnmarshalFlag("true"))
	assert.True(t, bool(b))
	assert.EqualError(t, b.UnmarshalFlag("yes"), "only `true' and `false' are valid values, not `yes'")
}
