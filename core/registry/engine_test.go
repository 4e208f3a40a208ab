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

package registry_test

import (
	"bytes"
	"context"
	"testing"

	bmocks "code.vegaprotocol.io/marketplace/core/broker/mocks"
	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/core/registry"
	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	minter = "marketplace"
	uri    = "https://ipfs.io/ipfs/QmP2aNgzCpt5Rz8zTifc7X2BB2E39ZTTzo3HwbghaxiWbK/4.json"
)

type testEngine struct {
	*registry.Engine
	evts []events.Event
}

func getTestEngine(t *testing.T) *testEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	broker := bmocks.NewMockBrokerI(ctrl)
	te := &testEngine{}
	broker.EXPECT().Send(gomock.Any()).AnyTimes().Do(func(e events.Event) {
		te.evts = append(te.evts, e)
	})
	te.Engine = registry.New(logging.NewTestLogger(), registry.NewDefaultConfig(), broker, minter)
	return te
}

func TestRegistry(t *testing.T) {
	t.Run("only the minter can mint", testMintRestricted)
	t.Run("ids are sequential from 1", testSequentialIDs)
	t.Run("owner can transfer", testOwnerTransfer)
	t.Run("approved party can transfer once", testApprovedTransfer)
	t.Run("operator can transfer and approve", testOperator)
	t.Run("transfer from the wrong owner fails", testWrongOwner)
	t.Run("unknown items", testUnknownItem)
	t.Run("approval checks", testApprovalChecks)
}

func testMintRestricted(t *testing.T) {
	e := getTestEngine(t)
	ctx := context.Background()

	_, err := e.Mint(ctx, "someone", uri, "owner")
	assert.EqualError(t, err, registry.ErrNotMinter.Error())
	_, err = e.Mint(ctx, minter, uri, "")
	assert.ErrorIs(t, err, registry.ErrInvalidParty)
	assert.Len(t, e.evts, 0)
}

func testSequentialIDs(t *testing.T) {
	e := getTestEngine(t)
	ctx := context.Background()

	for i := uint64(1); i <= 3; i++ {
		id, err := e.Mint(ctx, minter, uri, "owner")
		require.NoError(t, err)
		assert.Equal(t, i, id)
	}
	owner, err := e.OwnerOf(2)
	require.NoError(t, err)
	assert.Equal(t, "owner", owner)
	got, err := e.TokenURI(2)
	require.NoError(t, err)
	assert.Equal(t, uri, got)

	require.Len(t, e.evts, 3)
	evt := e.evts[0].(*events.ItemTransfer)
	assert.Equal(t, "", evt.From())
	assert.Equal(t, "owner", evt.To())
	assert.Equal(t, uint64(1), evt.ItemID())
}

func testOwnerTransfer(t *testing.T) {
	e := getTestEngine(t)
	ctx := context.Background()
	id, err := e.Mint(ctx, minter, uri, "owner")
	require.NoError(t, err)

	require.NoError(t, e.TransferFrom(ctx, "owner", "owner", "buyer", id))
	owner, _ := e.OwnerOf(id)
	assert.Equal(t, "buyer", owner)
}

func testApprovedTransfer(t *testing.T) {
	e := getTestEngine(t)
	ctx := context.Background()
	id, err := e.Mint(ctx, minter, uri, "owner")
	require.NoError(t, err)

	err = e.TransferFrom(ctx, minter, "owner", minter, id)
	assert.ErrorIs(t, err, registry.ErrNotApproved)

	require.NoError(t, e.Approve(ctx, "owner", minter, id))
	approved, _ := e.GetApproved(id)
	assert.Equal(t, minter, approved)

	require.NoError(t, e.TransferFrom(ctx, minter, "owner", minter, id))
	approved, _ = e.GetApproved(id)
	assert.Empty(t, approved)

	// the marketplace gives it back, the approval was consumed
	require.NoError(t, e.TransferFrom(ctx, minter, minter, "owner", id))
	err = e.TransferFrom(ctx, minter, "owner", minter, id)
	assert.ErrorIs(t, err, registry.ErrNotApproved)
}

func testOperator(t *testing.T) {
	e := getTestEngine(t)
	ctx := context.Background()
	id, err := e.Mint(ctx, minter, uri, "owner")
	require.NoError(t, err)

	require.NoError(t, e.SetApprovalForAll(ctx, "owner", "operator", true))
	assert.True(t, e.IsApprovedForAll("owner", "operator"))
	require.NoError(t, e.Approve(ctx, "operator", "friend", id))
	require.NoError(t, e.TransferFrom(ctx, "operator", "owner", "buyer", id))

	require.NoError(t, e.SetApprovalForAll(ctx, "owner", "operator", false))
	assert.False(t, e.IsApprovedForAll("owner", "operator"))
	assert.ErrorIs(t, e.SetApprovalForAll(ctx, "owner", "owner", true), registry.ErrApprovalToCaller)
}

func testWrongOwner(t *testing.T) {
	e := getTestEngine(t)
	ctx := context.Background()
	id, err := e.Mint(ctx, minter, uri, "owner")
	require.NoError(t, err)

	err = e.TransferFrom(ctx, "thief", "thief", "thief", id)
	assert.EqualError(t, err, registry.ErrNotOwner.Error())
	err = e.TransferFrom(ctx, "", "owner", "thief", id)
	assert.ErrorIs(t, err, registry.ErrNotApproved)
	err = e.TransferFrom(ctx, "owner", "owner", "", id)
	assert.ErrorIs(t, err, registry.ErrInvalidParty)

	owner, _ := e.OwnerOf(id)
	assert.Equal(t, "owner", owner)
}

func testUnknownItem(t *testing.T) {
	e := getTestEngine(t)
	ctx := context.Background()

	_, err := e.OwnerOf(42)
	assert.ErrorIs(t, err, registry.ErrItemNotFound)
	_, err = e.TokenURI(42)
	assert.ErrorIs(t, err, registry.ErrItemNotFound)
	_, err = e.GetApproved(42)
	assert.ErrorIs(t, err, registry.ErrItemNotFound)
	assert.ErrorIs(t, e.Approve(ctx, "owner", minter, 42), registry.ErrItemNotFound)
	assert.ErrorIs(t, e.TransferFrom(ctx, "owner", "owner", minter, 42), registry.ErrItemNotFound)
}

func testApprovalChecks(t *testing.T) {
	e := getTestEngine(t)
	ctx := context.Background()
	id, err := e.Mint(ctx, minter, uri, "owner")
	require.NoError(t, err)

	assert.ErrorIs(t, e.Approve(ctx, "owner", "owner", id), registry.ErrApprovalToOwner)
	assert.ErrorIs(t, e.Approve(ctx, "stranger", "stranger", id), registry.ErrNotApproved)

	require.NoError(t, e.Approve(ctx, "owner", minter, id))
	evt := e.evts[len(e.evts)-1].(*events.ItemApproval)
	assert.Equal(t, "owner", evt.Owner())
	assert.Equal(t, minter, evt.Approved())
	assert.Equal(t, id, evt.ItemID())
}

func TestRegistrySnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	e := getTestEngine(t)
	for i := 0; i < 3; i++ {
		_, err := e.Mint(ctx, minter, uri, "owner")
		require.NoError(t, err)
	}
	require.NoError(t, e.Approve(ctx, "owner", minter, 2))
	require.NoError(t, e.SetApprovalForAll(ctx, "owner", "operator", true))

	assert.Equal(t, types.RegistrySnapshot, e.Namespace())
	state, err := e.GetState(e.Keys()[0])
	require.NoError(t, err)

	restored := getTestEngine(t)
	require.NoError(t, restored.LoadState(ctx, e.Keys()[0], state))
	approved, err := restored.GetApproved(2)
	require.NoError(t, err)
	assert.Equal(t, minter, approved)
	assert.True(t, restored.IsApprovedForAll("owner", "operator"))

	// ids keep going from where they were
	id, err := restored.Mint(ctx, minter, uri, "owner")
	require.NoError(t, err)
	assert.Equal(t, uint64(4), id)

	again, err := e.GetState(e.Keys()[0])
	require.NoError(t, err)
	assert.True(t, bytes.Equal(state, again))
}
