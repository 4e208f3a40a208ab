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

package metrics

import (
	"context"
	"testing"

	"code.vegaprotocol.io/marketplace/libs/num"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddInstrument(t *testing.T) {
	t.Run("plain counter", func(t *testing.T) {
		h, err := AddInstrument(Counter, "test_plain_counter", Namespace("test"))
		require.NoError(t, err)
		c, err := h.Counter()
		require.NoError(t, err)
		c.Inc()
		assert.Equal(t, float64(1), testutil.ToFloat64(c))

		_, err = h.CounterVec()
		assert.ErrorIs(t, err, ErrInstrumentTypeMismatch)
		_, err = h.Gauge()
		assert.ErrorIs(t, err, ErrInstrumentTypeMismatch)
	})

	t.Run("gauge vector", func(t *testing.T) {
		h, err := AddInstrument(Gauge, "test_gauge_vec", Namespace("test"), Vectors("a"))
		require.NoError(t, err)
		g, err := h.GaugeVec()
		require.NoError(t, err)
		g.WithLabelValues("x").Set(42)
		assert.Equal(t, float64(42), testutil.ToFloat64(g.WithLabelValues("x")))
	})

	t.Run("duplicate registration", func(t *testing.T) {
		_, err := AddInstrument(Histogram, "test_histogram", Namespace("test"))
		require.NoError(t, err)
		_, err = AddInstrument(Histogram, "test_histogram", Namespace("test"))
		assert.Error(t, err)
	})

	t.Run("unsupported instrument", func(t *testing.T) {
		_, err := AddInstrument(instrument(42), "test_unsupported")
		assert.ErrorIs(t, err, ErrInstrumentNotSupported)
	})
}

func TestMarketplaceMetrics(t *testing.T) {
	require.NoError(t, Setup())
	// a second call reuses the registered instruments
	require.NoError(t, Setup())

	CommandCounterInc("BuyItem", "ok")
	CommandCounterInc("BuyItem", "ok")
	CommandCounterInc("BuyItem", "error")
	assert.Equal(t, float64(2), testutil.ToFloat64(commandCounter.WithLabelValues("BuyItem", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(commandCounter.WithLabelValues("BuyItem", "error")))

	EventCounterInc("MakeBid", "MakeBid", "FinishAuction")
	assert.Equal(t, float64(2), testutil.ToFloat64(eventCounter.WithLabelValues("MakeBid")))
	assert.Equal(t, float64(1), testutil.ToFloat64(eventCounter.WithLabelValues("FinishAuction")))

	EscrowBalanceSet("DIMA", num.MustParseUnits("12.5", 18), 18)
	assert.Equal(t, 12.5, testutil.ToFloat64(escrowGauge.WithLabelValues("DIMA")))
}

func TestStartDisabled(t *testing.T) {
	log := logging.NewTestLogger()
	defer log.AtExit()

	srv, err := Start(log, NewDefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, srv)
	assert.NoError(t, srv.Stop(context.Background()))
}
