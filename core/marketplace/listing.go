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

package marketplace

import (
	"context"

	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/libs/num"
	"code.vegaprotocol.io/marketplace/logging"
)

// ListItem puts the item on sale at a fixed price, the item is moved into
// escrow until it is bought or the listing cancelled. The seller must have
// approved the marketplace on the item.
func (e *Engine) ListItem(ctx context.Context, party string, itemID uint64, price *num.Uint) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	if e.isListed(itemID) {
		return types.ErrAlreadyListed
	}
	if price == nil {
		price = num.UintZero()
	}

	prev, hadPrev := e.listings[itemID]
	e.listings[itemID] = &types.Listing{
		ItemID: itemID,
		Seller: party,
		Price:  price.Clone(),
		Active: true,
	}

	if err := e.registry.TransferFrom(ctx, types.EscrowParty, party, types.EscrowParty, itemID); err != nil {
		if hadPrev {
			e.listings[itemID] = prev
		} else {
			delete(e.listings, itemID)
		}
		e.log.Debug("could not move item into escrow",
			logging.ItemID(itemID),
			logging.PartyID(party),
			logging.Error(err),
		)
		return err
	}

	e.broker.Send(events.NewItemListedEvent(ctx, itemID, party, price))
	return nil
}

// Cancel withdraws a fixed price listing and gives the item back to the
// seller.
func (e *Engine) Cancel(ctx context.Context, party string, itemID uint64) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	l, ok := e.listings[itemID]
	if !ok || !l.Active {
		return types.ErrNoActiveListing
	}
	if l.Seller != party {
		return types.ErrNotSeller
	}
	if err := e.ensureInEscrow(itemID); err != nil {
		return err
	}

	l.Active = false
	e.releaseItem(ctx, itemID, l.Seller)

	e.broker.Send(events.NewListingCanceledEvent(ctx, itemID, l.Seller))
	return nil
}

// BuyItem pays the listing price to the seller on behalf of party, using
// the allowance party gave to the marketplace, and hands the item over.
func (e *Engine) BuyItem(ctx context.Context, party string, itemID uint64) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	l, ok := e.listings[itemID]
	if !ok || !l.Active {
		return types.ErrNotForSale
	}
	if err := e.ensureInEscrow(itemID); err != nil {
		return err
	}

	l.Active = false
	if err := e.currency.TransferFrom(ctx, types.EscrowParty, party, l.Seller, l.Price); err != nil {
		l.Active = true
		e.log.Debug("could not pay for item",
			logging.ItemID(itemID),
			logging.PartyID(party),
			logging.BigUint("price", l.Price),
			logging.Error(err),
		)
		return err
	}
	e.releaseItem(ctx, itemID, party)

	e.log.Debug("item bought",
		logging.ItemID(itemID),
		logging.PartyID(party),
		logging.String("seller", l.Seller),
		logging.BigUint("price", l.Price),
	)
	e.broker.Send(events.NewBuyItemEvent(ctx, itemID))
	return nil
}
