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
	"bytes"
	"context"
	"testing"
	"time"

	"code.vegaprotocol.io/marketplace/core/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarketplaceSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	x := getExchange(t)
	id := x.startAuction(t)
	x.approveAndBid(t, "buyer1", id, "30.0")

	listed, err := x.CreateItem(ctx, "creator", tokenURI, "owner")
	require.NoError(t, err)
	require.NoError(t, x.registry.Approve(ctx, "owner", types.EscrowParty, listed))
	require.NoError(t, x.ListItem(ctx, "owner", listed, units("10.0")))

	assert.Equal(t, types.MarketplaceSnapshot, x.Namespace())
	key := x.Keys()[0]
	state, err := x.GetState(key)
	require.NoError(t, err)

	// restore into a marketplace sharing the same ledgers
	restored := getExchange(t)
	require.NoError(t, restored.LoadState(ctx, key, state))

	a, err := restored.GetAuction(id)
	require.NoError(t, err)
	assert.True(t, a.Active)
	assert.Equal(t, "buyer1", a.CurrentBidder)
	assert.Equal(t, units("30.0"), a.CurrentPrice)
	assert.Equal(t, uint64(1), a.BidCount)
	assert.Equal(t, units("30.0"), restored.TotalEscrowed())

	l, err := restored.GetListing(listed)
	require.NoError(t, err)
	assert.True(t, l.Active)
	assert.Equal(t, units("10.0"), l.Price)

	// the expiry index is rebuilt
	assert.Equal(t, []uint64{id}, restored.FinishableAuctions(x.clock.now.Add(72*time.Hour)))

	again, err := restored.GetState(key)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(state, again))
}

func TestMarketplaceSnapshotRejectsInvalidState(t *testing.T) {
	x := getExchange(t)
	ctx := context.Background()

	_, err := x.GetState("unknown")
	assert.ErrorIs(t, err, types.ErrSnapshotKeyDoesNotExist)
	assert.Error(t, x.LoadState(ctx, x.Keys()[0], []byte("{")))

	both := []byte(`{"listings":[{"item_id":1,"seller":"a","price":"1","active":true}],"auctions":[{"item_id":1,"seller":"a","min_price":"1","current_price":"1","active":true}]}`)
	assert.Error(t, x.LoadState(ctx, x.Keys()[0], both))
}
