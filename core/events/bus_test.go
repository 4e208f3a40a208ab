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

package events_test

import (
	"context"
	"testing"

	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/core/types"
	vgcontext "code.vegaprotocol.io/marketplace/libs/context"
	"code.vegaprotocol.io/marketplace/libs/num"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	assert.Equal(t, "MakeBid", events.MakeBidEvent.String())
	assert.Equal(t, "UNKNOWN EVENT", events.Type(-1).String())

	ty, ok := events.TryFromString("finishauction")
	assert.True(t, ok)
	assert.Equal(t, events.FinishAuctionEvent, *ty)

	_, ok = events.TryFromString("nope")
	assert.False(t, ok)
}

func TestTraceIDIsPropagated(t *testing.T) {
	ctx := vgcontext.WithTraceID(context.Background(), "trace")
	e := events.NewBuyItemEvent(ctx, 1)
	assert.Equal(t, "trace", e.TraceID())
	assert.Equal(t, events.BuyItemEvent, e.Type())

	// a trace id is generated when the context has none
	e = events.NewBuyItemEvent(context.Background(), 1)
	assert.NotEmpty(t, e.TraceID())
}

func TestSequenceIDIsSetOnce(t *testing.T) {
	e := events.NewFinishAuctionEvent(context.Background(), 1, true)
	e.SetSequenceID(3)
	e.SetSequenceID(4)
	assert.Equal(t, uint64(3), e.Sequence())
}

func TestEventAmountsAreCopied(t *testing.T) {
	price := num.NewUint(10)
	e := events.NewMakeBidEvent(context.Background(), 1, price, "bidder")
	price.SetUint64(11)
	assert.Equal(t, uint64(10), e.Price().Uint64())
}

func TestFilters(t *testing.T) {
	ctx := context.Background()
	bid := events.NewMakeBidEvent(ctx, 2, num.NewUint(10), "bidder")
	transfer := events.NewCurrencyTransferEvent(ctx, "bidder", types.EscrowParty, num.NewUint(10))
	finish := events.NewFinishAuctionEvent(ctx, 2, false)

	byParty := events.PartyFilter("bidder")
	assert.True(t, byParty(bid))
	assert.True(t, byParty(transfer))
	assert.False(t, byParty(finish))

	byItem := events.ItemFilter(2)
	assert.True(t, byItem(bid))
	assert.False(t, byItem(transfer))
	assert.True(t, byItem(finish))
	assert.False(t, events.ItemFilter(3)(finish))
}

func TestTxErr(t *testing.T) {
	e := events.NewTxErrEvent(context.Background(), types.ErrNotForSale, "party", types.BuyItem{ItemID: 1})
	assert.Equal(t, "BuyItem", e.Command())
	assert.Equal(t, types.ErrNotForSale.Error(), e.ErrMsg())
	assert.True(t, e.IsParty("party"))
}
