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

package subscribers

import (
	"context"
	"errors"
	"testing"

	"code.vegaprotocol.io/marketplace/core/broker"
	"code.vegaprotocol.io/marketplace/core/currency"
	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/core/metrics"
	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/libs/num"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func gatherValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	next:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue next
				}
			}
			if m.GetCounter() != nil {
				return m.GetCounter().GetValue()
			}
			return m.GetGauge().GetValue()
		}
	}
	return 0
}

func TestMetricsSubscriber(t *testing.T) {
	require.NoError(t, metrics.Setup())

	log := logging.NewTestLogger()
	defer log.AtExit()

	ctx := context.Background()
	b := broker.New(log, broker.NewDefaultConfig())
	ccy := currency.New(log, currency.NewDefaultConfig(), b)
	sub := NewMetrics(ccy)
	b.Subscribe(sub)
	assert.NotZero(t, sub.ID())

	before := gatherValue(t, "marketplace_events_total", map[string]string{"type": events.CurrencyTransferEvent.String()})

	require.NoError(t, ccy.Mint(ctx, "alice", num.MustParseUnits("10", 18)))
	require.NoError(t, ccy.Transfer(ctx, "alice", types.EscrowParty, num.MustParseUnits("2.5", 18)))

	after := gatherValue(t, "marketplace_events_total", map[string]string{"type": events.CurrencyTransferEvent.String()})
	assert.Equal(t, float64(2), after-before)
	assert.Equal(t, 2.5, gatherValue(t, "marketplace_escrow_balance", map[string]string{"symbol": ccy.Symbol()}))

	require.NoError(t, ccy.Approve(ctx, types.EscrowParty, "alice", num.MustParseUnits("1", 18)))
	require.NoError(t, ccy.TransferFrom(ctx, "alice", types.EscrowParty, "bob", num.MustParseUnits("1", 18)))
	assert.Equal(t, 1.5, gatherValue(t, "marketplace_escrow_balance", map[string]string{"symbol": ccy.Symbol()}))
}

func TestEventFields(t *testing.T) {
	ctx := context.Background()

	asMap := func(e events.Event) map[string]interface{} {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range eventFields(e) {
			f.AddTo(enc)
		}
		return enc.Fields
	}

	t.Run("bid", func(t *testing.T) {
		fields := asMap(events.NewMakeBidEvent(ctx, 7, num.NewUint(42), "bob"))
		assert.Equal(t, "MakeBid", fields["event-type"])
		assert.Equal(t, uint64(7), fields["item-id"])
		assert.Equal(t, "42", fields["price"])
		assert.Equal(t, "bob", fields["bidder"])
	})

	t.Run("transfer", func(t *testing.T) {
		fields := asMap(events.NewCurrencyTransferEvent(ctx, "alice", types.EscrowParty, num.NewUint(5)))
		assert.Equal(t, "5", fields["amount"])
		assert.Equal(t, "alice", fields["from"])
		assert.Equal(t, types.EscrowParty, fields["to"])
		assert.NotContains(t, fields, "item-id")
	})

	t.Run("tx error", func(t *testing.T) {
		fields := asMap(events.NewTxErrEvent(ctx, errors.New("boom"), "carol", types.BuyItem{ItemID: 1}))
		assert.Equal(t, "carol", fields["party"])
		assert.Equal(t, "boom", fields["error"])
		assert.Equal(t, types.BuyItem{}.CommandName(), fields["command"])
	})
}

func TestEventLoggerTypes(t *testing.T) {
	log := logging.NewTestLogger()
	defer log.AtExit()

	all := NewEventLogger(log)
	assert.Empty(t, all.Types())

	some := NewEventLogger(log, events.MarketplaceEvents()...)
	assert.Equal(t, events.MarketplaceEvents(), some.Types())

	b := broker.New(log, broker.NewDefaultConfig())
	b.Subscribe(some)
	b.Send(events.NewFinishAuctionEvent(context.Background(), 1, true))
}
