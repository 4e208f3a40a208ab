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

package processor_test

import (
	"context"
	"errors"
	"testing"
	"time"

	bmocks "code.vegaprotocol.io/marketplace/core/broker/mocks"
	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/core/processor"
	"code.vegaprotocol.io/marketplace/core/processor/mocks"
	"code.vegaprotocol.io/marketplace/core/types"
	vgcontext "code.vegaprotocol.io/marketplace/libs/context"
	"code.vegaprotocol.io/marketplace/libs/num"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProcessor struct {
	*processor.Processor
	mkt    *mocks.MockMarketplace
	ccy    *mocks.MockCurrency
	reg    *mocks.MockRegistry
	events []events.Event
}

func getTestProcessor(t *testing.T) *testProcessor {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := logging.NewTestLogger()
	broker := bmocks.NewMockBrokerI(ctrl)

	tp := &testProcessor{
		mkt: mocks.NewMockMarketplace(ctrl),
		ccy: mocks.NewMockCurrency(ctrl),
		reg: mocks.NewMockRegistry(ctrl),
	}
	broker.EXPECT().Send(gomock.Any()).AnyTimes().Do(func(e events.Event) {
		tp.events = append(tp.events, e)
	})
	tp.Processor = processor.New(log, processor.NewDefaultConfig(), broker, tp.mkt, tp.ccy, tp.reg)
	return tp
}

func TestDeliver(t *testing.T) {
	t.Run("commands are dispatched to the marketplace", testDispatchMarketplace)
	t.Run("collaborator commands are dispatched to the ledgers", testDispatchLedgers)
	t.Run("finish auction reports the outcome", testFinishAuctionResult)
	t.Run("invalid parties are rejected", testInvalidParty)
	t.Run("failures are reported as tx errors", testTxErr)
	t.Run("unknown commands are rejected", testUnknownCommand)
	t.Run("ethereum parties are checksummed", testNormaliseParty)
	t.Run("every command gets its own trace id", testTraceIDs)
}

func testDispatchMarketplace(t *testing.T) {
	tp := getTestProcessor(t)
	ctx := context.Background()
	price := num.NewUint(10)

	gomock.InOrder(
		tp.mkt.EXPECT().CreateItem(gomock.Any(), "alice", "ipfs://1", "bob").Return(uint64(1), nil),
		tp.mkt.EXPECT().ListItem(gomock.Any(), "bob", uint64(1), price).Return(nil),
		tp.mkt.EXPECT().Cancel(gomock.Any(), "bob", uint64(1)).Return(nil),
		tp.mkt.EXPECT().BuyItem(gomock.Any(), "carol", uint64(1)).Return(nil),
		tp.mkt.EXPECT().ListItemOnAuction(gomock.Any(), "carol", uint64(1), price).Return(nil),
		tp.mkt.EXPECT().MakeBid(gomock.Any(), "dave", uint64(1), price).Return(nil),
		tp.mkt.EXPECT().CancelAuction(gomock.Any(), "carol", uint64(1)).Return(nil),
	)

	res, err := tp.Deliver(ctx, "alice", types.CreateItem{URI: "ipfs://1", Owner: "bob"})
	require.NoError(t, err)
	assert.Equal(t, processor.Result{ItemID: 1, Success: true}, res)

	for _, c := range []struct {
		party string
		cmd   types.Command
	}{
		{"bob", types.ListItem{ItemID: 1, Price: price}},
		{"bob", types.CancelListing{ItemID: 1}},
		{"carol", types.BuyItem{ItemID: 1}},
		{"carol", types.ListItemOnAuction{ItemID: 1, MinPrice: price}},
		{"dave", types.MakeBid{ItemID: 1, Price: price}},
		{"carol", types.CancelAuction{ItemID: 1}},
	} {
		res, err := tp.Deliver(ctx, c.party, c.cmd)
		require.NoError(t, err, c.cmd.CommandName())
		assert.Equal(t, processor.Result{ItemID: 1, Success: true}, res)
	}
	assert.Empty(t, tp.events)
}

func testDispatchLedgers(t *testing.T) {
	tp := getTestProcessor(t)
	ctx := context.Background()

	tp.ccy.EXPECT().Approve(gomock.Any(), "alice", types.EscrowParty, num.NewUint(5)).Return(nil)
	tp.ccy.EXPECT().Transfer(gomock.Any(), "alice", "bob", num.UintZero()).Return(nil)
	tp.reg.EXPECT().Approve(gomock.Any(), "alice", types.EscrowParty, uint64(3)).Return(nil)

	_, err := tp.Deliver(ctx, "alice", types.ApproveCurrency{Spender: types.EscrowParty, Amount: num.NewUint(5)})
	require.NoError(t, err)
	// a missing amount is a zero amount
	_, err = tp.Deliver(ctx, "alice", types.TransferCurrency{To: "bob"})
	require.NoError(t, err)
	res, err := tp.Deliver(ctx, "alice", types.ApproveItem{Spender: types.EscrowParty, ItemID: 3})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.ItemID)
}

func testFinishAuctionResult(t *testing.T) {
	tp := getTestProcessor(t)
	ctx := context.Background()

	tp.mkt.EXPECT().FinishAuction(gomock.Any(), "anyone", uint64(2)).Return(false, nil)
	res, err := tp.Deliver(ctx, "anyone", types.FinishAuction{ItemID: 2})
	require.NoError(t, err)
	assert.Equal(t, processor.Result{ItemID: 2, Success: false}, res)

	tp.mkt.EXPECT().FinishAuction(gomock.Any(), "anyone", uint64(2)).Return(true, nil)
	res, err = tp.Deliver(ctx, "anyone", types.FinishAuction{ItemID: 2})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func testInvalidParty(t *testing.T) {
	tp := getTestProcessor(t)
	ctx := context.Background()

	for _, party := range []string{"", "  ", types.EscrowParty} {
		_, err := tp.Deliver(ctx, party, types.BuyItem{ItemID: 1})
		assert.ErrorIs(t, err, types.ErrInvalidParty)
	}

	// escrow can't be the recipient of a transfer or a new item
	_, err := tp.Deliver(ctx, "alice", types.TransferCurrency{To: types.EscrowParty, Amount: num.NewUint(5)})
	assert.ErrorIs(t, err, types.ErrInvalidParty)
	_, err = tp.Deliver(ctx, "alice", types.TransferCurrency{To: " * ", Amount: num.NewUint(5)})
	assert.ErrorIs(t, err, types.ErrInvalidParty)
	_, err = tp.Deliver(ctx, "alice", types.CreateItem{URI: "ipfs://item", Owner: types.EscrowParty})
	assert.ErrorIs(t, err, types.ErrInvalidParty)

	require.Len(t, tp.events, 6)
	for _, e := range tp.events {
		assert.Equal(t, events.TxErrEvent, e.Type())
	}
}

func testTxErr(t *testing.T) {
	tp := getTestProcessor(t)
	ctx := context.Background()

	tp.mkt.EXPECT().MakeBid(gomock.Any(), "bob", uint64(1), num.NewUint(1)).Return(types.ErrBidTooLowForMinimum)
	res, err := tp.Deliver(ctx, "bob", types.MakeBid{ItemID: 1, Price: num.NewUint(1)})
	assert.ErrorIs(t, err, types.ErrBidTooLowForMinimum)
	assert.Equal(t, processor.Result{}, res)

	require.Len(t, tp.events, 1)
	txErr, ok := tp.events[0].(*events.TxErr)
	require.True(t, ok)
	assert.Equal(t, "bob", txErr.PartyID())
	assert.Equal(t, "MakeBid", txErr.Command())
	assert.Equal(t, types.ErrBidTooLowForMinimum.Error(), txErr.ErrMsg())
}

type unknownCommand struct{}

func (unknownCommand) CommandName() string { return "Unknown" }

func testUnknownCommand(t *testing.T) {
	tp := getTestProcessor(t)

	_, err := tp.Deliver(context.Background(), "alice", unknownCommand{})
	assert.ErrorIs(t, err, processor.ErrUnknownCommand)
	_, err = tp.Deliver(context.Background(), "alice", nil)
	assert.ErrorIs(t, err, processor.ErrUnknownCommand)
	assert.Len(t, tp.events, 2)
}

func testNormaliseParty(t *testing.T) {
	tp := getTestProcessor(t)
	const (
		lower   = "0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"
		checked = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	)

	tp.mkt.EXPECT().CreateItem(gomock.Any(), checked, "ipfs://1", checked).Return(uint64(1), nil)
	_, err := tp.Deliver(context.Background(), lower, types.CreateItem{URI: "ipfs://1", Owner: lower})
	require.NoError(t, err)
}

func testTraceIDs(t *testing.T) {
	tp := getTestProcessor(t)
	traces := map[string]struct{}{}

	tp.mkt.EXPECT().BuyItem(gomock.Any(), "alice", uint64(1)).Times(3).DoAndReturn(
		func(ctx context.Context, _ string, _ uint64) error {
			_, id := vgcontext.TraceIDFromContext(ctx)
			traces[id] = struct{}{}
			return nil
		})
	for i := 0; i < 3; i++ {
		_, err := tp.Deliver(context.Background(), "alice", types.BuyItem{ItemID: 1})
		require.NoError(t, err)
	}
	assert.Len(t, traces, 3)
}

func TestSubmit(t *testing.T) {
	t.Run("submit fails when the processor is not running", func(t *testing.T) {
		tp := getTestProcessor(t)
		_, err := tp.Submit(context.Background(), "alice", types.BuyItem{ItemID: 1})
		assert.ErrorIs(t, err, processor.ErrProcessorNotRunning)
	})

	t.Run("submitted commands are applied by run", func(t *testing.T) {
		tp := getTestProcessor(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		tp.mkt.EXPECT().BuyItem(gomock.Any(), "alice", uint64(1)).Return(nil)
		tp.mkt.EXPECT().BuyItem(gomock.Any(), "alice", uint64(2)).Return(types.ErrNotForSale)

		done := make(chan error, 1)
		go func() { done <- tp.Run(ctx) }()

		var (
			res processor.Result
			err error
		)
		require.Eventually(t, func() bool {
			res, err = tp.Submit(ctx, "alice", types.BuyItem{ItemID: 1})
			return !errors.Is(err, processor.ErrProcessorNotRunning)
		}, time.Second, time.Millisecond)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), res.ItemID)

		_, err = tp.Submit(ctx, "alice", types.BuyItem{ItemID: 2})
		assert.ErrorIs(t, err, types.ErrNotForSale)

		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("processor did not stop")
		}
	})
}
