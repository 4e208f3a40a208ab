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

package marketplace_test

import (
	"context"
	"errors"
	"testing"
	"time"

	bmocks "code.vegaprotocol.io/marketplace/core/broker/mocks"
	"code.vegaprotocol.io/marketplace/core/currency"
	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/core/marketplace"
	"code.vegaprotocol.io/marketplace/core/marketplace/mocks"
	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/libs/num"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errCollaborator = errors.New("collaborator rejected the call")

type testEngine struct {
	*marketplace.Engine
	ctrl     *gomock.Controller
	broker   *bmocks.MockBrokerI
	registry *mocks.MockRegistry
	currency *mocks.MockCurrency
	tsvc     *mocks.MockTimeService
	now      time.Time
	evts     []events.Event
}

func getTestEngine(t *testing.T) *testEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	te := &testEngine{
		ctrl:     ctrl,
		broker:   bmocks.NewMockBrokerI(ctrl),
		registry: mocks.NewMockRegistry(ctrl),
		currency: mocks.NewMockCurrency(ctrl),
		tsvc:     mocks.NewMockTimeService(ctrl),
		now:      time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	te.tsvc.EXPECT().GetTimeNow().AnyTimes().DoAndReturn(func() time.Time { return te.now })
	te.broker.EXPECT().Send(gomock.Any()).AnyTimes().Do(func(e events.Event) {
		te.evts = append(te.evts, e)
	})
	te.Engine = marketplace.New(
		logging.NewTestLogger(), marketplace.NewDefaultConfig(), te.broker, te.tsvc, te.registry, te.currency,
	)
	return te
}

// listed puts item 1 on a fixed price listing by seller.
func (te *testEngine) listed(t *testing.T, price uint64) {
	t.Helper()
	te.registry.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, "seller", types.EscrowParty, uint64(1)).Return(nil)
	require.NoError(t, te.ListItem(context.Background(), "seller", 1, num.NewUint(price)))
}

// onAuction puts item 1 on auction by seller.
func (te *testEngine) onAuction(t *testing.T, minPrice uint64) {
	t.Helper()
	te.registry.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, "seller", types.EscrowParty, uint64(1)).Return(nil)
	require.NoError(t, te.ListItemOnAuction(context.Background(), "seller", 1, num.NewUint(minPrice)))
}

// funds makes party able to pay exactly price.
func (te *testEngine) funds(party string, price uint64) {
	te.currency.EXPECT().Allowance(party, types.EscrowParty).Return(num.NewUint(price))
	te.currency.EXPECT().BalanceOf(party).Return(num.NewUint(price))
}

func (te *testEngine) bid(t *testing.T, bidder string, price uint64) {
	t.Helper()
	te.funds(bidder, price)
	te.currency.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, bidder, types.EscrowParty, num.NewUint(price)).Return(nil)
	require.NoError(t, te.MakeBid(context.Background(), bidder, 1, num.NewUint(price)))
}

func TestCreateItem(t *testing.T) {
	t.Run("mints through the registry as the marketplace", testCreateItemMints)
	t.Run("registry failures are returned unchanged", testCreateItemRegistryError)
}

func testCreateItemMints(t *testing.T) {
	e := getTestEngine(t)
	e.registry.EXPECT().Mint(gomock.Any(), types.EscrowParty, "uri", "owner").Return(uint64(1), nil)

	id, err := e.CreateItem(context.Background(), "creator", "uri", "owner")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	require.Len(t, e.evts, 1)
	evt := e.evts[0].(*events.ItemCreated)
	assert.Equal(t, "uri", evt.URI())
	assert.Equal(t, "owner", evt.Owner())
	assert.Equal(t, uint64(1), evt.ItemID())
}

func testCreateItemRegistryError(t *testing.T) {
	e := getTestEngine(t)
	e.registry.EXPECT().Mint(gomock.Any(), types.EscrowParty, "uri", "").Return(uint64(0), errCollaborator)

	_, err := e.CreateItem(context.Background(), "creator", "uri", "")
	assert.ErrorIs(t, err, errCollaborator)
	assert.Len(t, e.evts, 0)
}

func TestListingAtomicity(t *testing.T) {
	t.Run("failed escrow leaves no listing", testListItemEscrowFails)
	t.Run("failed payment keeps the listing active", testBuyItemPaymentFails)
	t.Run("an item can't be listed twice", testListItemTwice)
	t.Run("cancel checks custody first", testCancelNotInEscrow)
	t.Run("failing release from escrow panics", testReleasePanics)
}

func testListItemEscrowFails(t *testing.T) {
	e := getTestEngine(t)
	e.registry.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, "seller", types.EscrowParty, uint64(1)).Return(errCollaborator)

	err := e.ListItem(context.Background(), "seller", 1, num.NewUint(5))
	assert.ErrorIs(t, err, errCollaborator)
	_, err = e.GetListing(1)
	assert.ErrorIs(t, err, types.ErrNoActiveListing)
	assert.Len(t, e.evts, 0)
}

func testBuyItemPaymentFails(t *testing.T) {
	e := getTestEngine(t)
	e.listed(t, 10)

	e.registry.EXPECT().OwnerOf(uint64(1)).Return(types.EscrowParty, nil)
	e.currency.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, "buyer", "seller", num.NewUint(10)).Return(errCollaborator)

	err := e.BuyItem(context.Background(), "buyer", 1)
	assert.ErrorIs(t, err, errCollaborator)

	l, err := e.GetListing(1)
	require.NoError(t, err)
	assert.True(t, l.Active)
	// only the listing event
	assert.Len(t, e.evts, 1)
}

func testListItemTwice(t *testing.T) {
	e := getTestEngine(t)
	e.listed(t, 10)

	err := e.ListItem(context.Background(), "seller", 1, num.NewUint(12))
	assert.EqualError(t, err, types.ErrAlreadyListed.Error())
	err = e.ListItemOnAuction(context.Background(), "seller", 1, num.NewUint(12))
	assert.EqualError(t, err, types.ErrAlreadyListed.Error())
}

func testCancelNotInEscrow(t *testing.T) {
	e := getTestEngine(t)
	e.listed(t, 10)

	e.registry.EXPECT().OwnerOf(uint64(1)).Return("someone-else", nil)
	err := e.Cancel(context.Background(), "seller", 1)
	assert.ErrorIs(t, err, types.ErrItemNotInEscrow)

	l, err := e.GetListing(1)
	require.NoError(t, err)
	assert.True(t, l.Active)
}

func testReleasePanics(t *testing.T) {
	e := getTestEngine(t)
	e.listed(t, 10)

	e.registry.EXPECT().OwnerOf(uint64(1)).Return(types.EscrowParty, nil)
	e.registry.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, types.EscrowParty, "seller", uint64(1)).Return(errCollaborator)
	assert.Panics(t, func() {
		_ = e.Cancel(context.Background(), "seller", 1)
	})
}

func TestAuctionAtomicity(t *testing.T) {
	t.Run("failed escrow leaves no auction", testListOnAuctionEscrowFails)
	t.Run("a bidder who can't pay leaves the auction untouched", testMakeBidPaymentFails)
	t.Run("previous bidder is refunded before the new bid is escrowed", testMakeBidRefundOrder)
	t.Run("raising your own bid counts the refund", testMakeBidCountsOwnRefund)
	t.Run("failing to pull a checked bid panics", testMakeBidPullFailsPanics)
	t.Run("finish checks the escrow balance", testFinishEscrowShortfall)
	t.Run("finishable auctions are ordered by start", testFinishableAuctions)
}

func testListOnAuctionEscrowFails(t *testing.T) {
	e := getTestEngine(t)
	e.registry.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, "seller", types.EscrowParty, uint64(1)).Return(errCollaborator)

	err := e.ListItemOnAuction(context.Background(), "seller", 1, num.NewUint(20))
	assert.ErrorIs(t, err, errCollaborator)
	_, err = e.GetAuction(1)
	assert.ErrorIs(t, err, types.ErrNoActiveAuction)

	e.now = e.now.Add(100 * time.Hour)
	assert.Empty(t, e.FinishableAuctions(e.now))
}

func testMakeBidPaymentFails(t *testing.T) {
	e := getTestEngine(t)
	e.onAuction(t, 20)
	e.bid(t, "buyer1", 30)

	// no transfer happens when the bidder can't pay
	e.currency.EXPECT().Allowance("buyer2", types.EscrowParty).Return(num.NewUint(40))
	e.currency.EXPECT().BalanceOf("buyer2").Return(num.NewUint(39))
	err := e.MakeBid(context.Background(), "buyer2", 1, num.NewUint(40))
	assert.ErrorIs(t, err, currency.ErrInsufficientBalance)

	e.currency.EXPECT().Allowance("buyer2", types.EscrowParty).Return(num.NewUint(39))
	err = e.MakeBid(context.Background(), "buyer2", 1, num.NewUint(40))
	assert.ErrorIs(t, err, currency.ErrInsufficientAllowance)

	a, err := e.GetAuction(1)
	require.NoError(t, err)
	assert.Equal(t, "buyer1", a.CurrentBidder)
	assert.Equal(t, num.NewUint(30), a.CurrentPrice)
	assert.Equal(t, uint64(1), a.BidCount)
	assert.Equal(t, num.NewUint(30), e.EscrowedFor(1))
}

func testMakeBidRefundOrder(t *testing.T) {
	e := getTestEngine(t)
	e.onAuction(t, 20)
	e.bid(t, "buyer1", 30)

	e.funds("buyer2", 40)
	gomock.InOrder(
		e.currency.EXPECT().Transfer(gomock.Any(), types.EscrowParty, "buyer1", num.NewUint(30)).Return(nil),
		e.currency.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, "buyer2", types.EscrowParty, num.NewUint(40)).Return(nil),
	)
	require.NoError(t, e.MakeBid(context.Background(), "buyer2", 1, num.NewUint(40)))

	evt := e.evts[len(e.evts)-1].(*events.MakeBid)
	assert.Equal(t, uint64(1), evt.ItemID())
	assert.Equal(t, num.NewUint(40), evt.Price())
	assert.Equal(t, "buyer2", evt.Bidder())
}

func testMakeBidCountsOwnRefund(t *testing.T) {
	e := getTestEngine(t)
	e.onAuction(t, 20)
	e.bid(t, "buyer1", 30)

	// 10 left on the account plus the 30 refunded covers 35
	e.currency.EXPECT().Allowance("buyer1", types.EscrowParty).Return(num.NewUint(35))
	e.currency.EXPECT().BalanceOf("buyer1").Return(num.NewUint(10))
	gomock.InOrder(
		e.currency.EXPECT().Transfer(gomock.Any(), types.EscrowParty, "buyer1", num.NewUint(30)).Return(nil),
		e.currency.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, "buyer1", types.EscrowParty, num.NewUint(35)).Return(nil),
	)
	require.NoError(t, e.MakeBid(context.Background(), "buyer1", 1, num.NewUint(35)))

	a, err := e.GetAuction(1)
	require.NoError(t, err)
	assert.Equal(t, num.NewUint(35), a.CurrentPrice)
	assert.Equal(t, uint64(2), a.BidCount)
}

func testMakeBidPullFailsPanics(t *testing.T) {
	e := getTestEngine(t)
	e.onAuction(t, 20)

	e.funds("buyer1", 30)
	e.currency.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, "buyer1", types.EscrowParty, num.NewUint(30)).Return(errCollaborator)
	assert.Panics(t, func() {
		_ = e.MakeBid(context.Background(), "buyer1", 1, num.NewUint(30))
	})
}

func testFinishEscrowShortfall(t *testing.T) {
	e := getTestEngine(t)
	e.onAuction(t, 20)
	e.bid(t, "buyer1", 30)
	e.now = e.now.Add(72 * time.Hour)

	e.registry.EXPECT().OwnerOf(uint64(1)).Return(types.EscrowParty, nil)
	e.currency.EXPECT().BalanceOf(types.EscrowParty).Return(num.NewUint(29))
	_, err := e.FinishAuction(context.Background(), "keeper", 1)
	assert.ErrorIs(t, err, types.ErrInsufficientEscrow)

	a, err := e.GetAuction(1)
	require.NoError(t, err)
	assert.True(t, a.Active)
}

func testFinishableAuctions(t *testing.T) {
	e := getTestEngine(t)
	start := e.now
	for _, id := range []uint64{3, 1, 2} {
		e.registry.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, "seller", types.EscrowParty, id).Return(nil)
		require.NoError(t, e.ListItemOnAuction(context.Background(), "seller", id, num.NewUint(1)))
		e.now = e.now.Add(time.Hour)
	}

	assert.Empty(t, e.FinishableAuctions(start.Add(71*time.Hour)))
	assert.Equal(t, []uint64{3}, e.FinishableAuctions(start.Add(72*time.Hour)))
	assert.Equal(t, []uint64{3, 1, 2}, e.FinishableAuctions(start.Add(80*time.Hour)))

	// only auctions ending within the window
	assert.Equal(t, []uint64{3}, e.AuctionsEndedBetween(start.Add(71*time.Hour), start.Add(72*time.Hour)))
	assert.Equal(t, []uint64{1, 2}, e.AuctionsEndedBetween(start.Add(72*time.Hour), start.Add(80*time.Hour)))
	assert.Empty(t, e.AuctionsEndedBetween(start.Add(72*time.Hour), start.Add(72*time.Hour)))

	// cancelled auctions leave the index
	e.registry.EXPECT().OwnerOf(uint64(1)).Return(types.EscrowParty, nil)
	e.registry.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, types.EscrowParty, "seller", uint64(1)).Return(nil)
	require.NoError(t, e.CancelAuction(context.Background(), "seller", 1))
	assert.Equal(t, []uint64{3, 2}, e.FinishableAuctions(start.Add(80*time.Hour)))
}

func TestReentrancy(t *testing.T) {
	e := getTestEngine(t)

	var reentrantErr error
	e.registry.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, "seller", types.EscrowParty, uint64(1)).DoAndReturn(
		func(ctx context.Context, _, _, _ string, _ uint64) error {
			// a malicious registry tries to buy the item while it's being listed
			reentrantErr = e.BuyItem(ctx, "attacker", 1)
			return nil
		},
	)
	require.NoError(t, e.ListItem(context.Background(), "seller", 1, num.NewUint(10)))
	assert.ErrorIs(t, reentrantErr, types.ErrReentrantCall)

	l, err := e.GetListing(1)
	require.NoError(t, err)
	assert.True(t, l.Active)
	assert.Equal(t, "seller", l.Seller)

	// the guard is released once the call returns
	e.registry.EXPECT().OwnerOf(uint64(1)).Return(types.EscrowParty, nil)
	e.registry.EXPECT().TransferFrom(gomock.Any(), types.EscrowParty, types.EscrowParty, "seller", uint64(1)).Return(nil)
	require.NoError(t, e.Cancel(context.Background(), "seller", 1))
}
