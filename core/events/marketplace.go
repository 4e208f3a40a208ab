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

package events

import (
	"context"

	"code.vegaprotocol.io/marketplace/libs/num"
)

// ItemCreated is emitted by the creation gateway once an item is minted.
type ItemCreated struct {
	*Base
	uri    string
	owner  string
	itemID uint64
}

func NewItemCreatedEvent(ctx context.Context, uri, owner string, itemID uint64) *ItemCreated {
	return &ItemCreated{
		Base:   newBase(ctx, ItemCreatedEvent),
		uri:    uri,
		owner:  owner,
		itemID: itemID,
	}
}

func (e ItemCreated) URI() string            { return e.uri }
func (e ItemCreated) Owner() string          { return e.owner }
func (e ItemCreated) ItemID() uint64         { return e.itemID }
func (e ItemCreated) IsParty(id string) bool { return e.owner == id }

type ItemListed struct {
	*Base
	itemID uint64
	seller string
	price  *num.Uint
}

func NewItemListedEvent(ctx context.Context, itemID uint64, seller string, price *num.Uint) *ItemListed {
	return &ItemListed{
		Base:   newBase(ctx, ItemListedEvent),
		itemID: itemID,
		seller: seller,
		price:  price.Clone(),
	}
}

func (e ItemListed) ItemID() uint64         { return e.itemID }
func (e ItemListed) Seller() string         { return e.seller }
func (e ItemListed) Price() *num.Uint       { return e.price.Clone() }
func (e ItemListed) IsParty(id string) bool { return e.seller == id }

type ListingCanceled struct {
	*Base
	itemID uint64
	seller string
}

func NewListingCanceledEvent(ctx context.Context, itemID uint64, seller string) *ListingCanceled {
	return &ListingCanceled{
		Base:   newBase(ctx, ListingCanceledEvent),
		itemID: itemID,
		seller: seller,
	}
}

func (e ListingCanceled) ItemID() uint64         { return e.itemID }
func (e ListingCanceled) Seller() string         { return e.seller }
func (e ListingCanceled) IsParty(id string) bool { return e.seller == id }

// BuyItem only carries the item, the parties can be read from the
// transfer events emitted by the ledgers.
type BuyItem struct {
	*Base
	itemID uint64
}

func NewBuyItemEvent(ctx context.Context, itemID uint64) *BuyItem {
	return &BuyItem{
		Base:   newBase(ctx, BuyItemEvent),
		itemID: itemID,
	}
}

func (e BuyItem) ItemID() uint64 { return e.itemID }

type ListItemOnAuction struct {
	*Base
	itemID   uint64
	seller   string
	minPrice *num.Uint
}

func NewListItemOnAuctionEvent(ctx context.Context, itemID uint64, seller string, minPrice *num.Uint) *ListItemOnAuction {
	return &ListItemOnAuction{
		Base:     newBase(ctx, ListItemOnAuctionEvent),
		itemID:   itemID,
		seller:   seller,
		minPrice: minPrice.Clone(),
	}
}

func (e ListItemOnAuction) ItemID() uint64         { return e.itemID }
func (e ListItemOnAuction) Seller() string         { return e.seller }
func (e ListItemOnAuction) MinPrice() *num.Uint    { return e.minPrice.Clone() }
func (e ListItemOnAuction) IsParty(id string) bool { return e.seller == id }

type CancelAuction struct {
	*Base
	itemID uint64
	seller string
}

func NewCancelAuctionEvent(ctx context.Context, itemID uint64, seller string) *CancelAuction {
	return &CancelAuction{
		Base:   newBase(ctx, CancelAuctionEvent),
		itemID: itemID,
		seller: seller,
	}
}

func (e CancelAuction) ItemID() uint64         { return e.itemID }
func (e CancelAuction) Seller() string         { return e.seller }
func (e CancelAuction) IsParty(id string) bool { return e.seller == id }

type MakeBid struct {
	*Base
	itemID uint64
	price  *num.Uint
	bidder string
}

func NewMakeBidEvent(ctx context.Context, itemID uint64, price *num.Uint, bidder string) *MakeBid {
	return &MakeBid{
		Base:   newBase(ctx, MakeBidEvent),
		itemID: itemID,
		price:  price.Clone(),
		bidder: bidder,
	}
}

func (e MakeBid) ItemID() uint64         { return e.itemID }
func (e MakeBid) Price() *num.Uint       { return e.price.Clone() }
func (e MakeBid) Bidder() string         { return e.bidder }
func (e MakeBid) IsParty(id string) bool { return e.bidder == id }

type FinishAuction struct {
	*Base
	itemID  uint64
	success bool
}

func NewFinishAuctionEvent(ctx context.Context, itemID uint64, success bool) *FinishAuction {
	return &FinishAuction{
		Base:    newBase(ctx, FinishAuctionEvent),
		itemID:  itemID,
		success: success,
	}
}

func (e FinishAuction) ItemID() uint64 { return e.itemID }
func (e FinishAuction) Success() bool  { return e.success }
