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

	"code.vegaprotocol.io/marketplace/core/currency"
	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/libs/num"
	"code.vegaprotocol.io/marketplace/logging"
)

// ListItemOnAuction starts an auction for the item, moving it into escrow.
// Bids must be strictly above minPrice.
func (e *Engine) ListItemOnAuction(ctx context.Context, party string, itemID uint64, minPrice *num.Uint) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	if minPrice == nil || minPrice.IsZero() {
		return types.ErrInvalidMinPrice
	}
	if e.isListed(itemID) {
		return types.ErrAlreadyListed
	}

	now := e.timeService.GetTimeNow()
	prev, hadPrev := e.auctions[itemID]
	e.auctions[itemID] = &types.Auction{
		ItemID:       itemID,
		Seller:       party,
		MinPrice:     minPrice.Clone(),
		CurrentPrice: minPrice.Clone(),
		StartTime:    now,
		Active:       true,
	}
	e.expiring.insert(itemID, now)

	if err := e.registry.TransferFrom(ctx, types.EscrowParty, party, types.EscrowParty, itemID); err != nil {
		e.expiring.remove(itemID, now)
		if hadPrev {
			e.auctions[itemID] = prev
		} else {
			delete(e.auctions, itemID)
		}
		e.log.Debug("could not move item into escrow",
			logging.ItemID(itemID),
			logging.PartyID(party),
			logging.Error(err),
		)
		return err
	}

	e.broker.Send(events.NewListItemOnAuctionEvent(ctx, itemID, party, minPrice))
	return nil
}

// CancelAuction stops the auction and gives the item back to the seller.
// If a bid was made the highest bidder is refunded.
func (e *Engine) CancelAuction(ctx context.Context, party string, itemID uint64) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	a, ok := e.auctions[itemID]
	if !ok || !a.Active {
		return types.ErrNoActiveAuction
	}
	if a.Seller != party {
		return types.ErrNotSeller
	}
	if err := e.ensureCustody(a); err != nil {
		return err
	}

	e.deactivate(a)
	if a.HasBids() {
		e.log.Info("auction cancelled with bids, refunding highest bidder",
			logging.ItemID(itemID),
			logging.PartyID(a.CurrentBidder),
			logging.BigUint("amount", a.CurrentPrice),
		)
		e.releaseFunds(ctx, a.CurrentBidder, a.CurrentPrice)
	}
	e.releaseItem(ctx, itemID, a.Seller)

	e.broker.Send(events.NewCancelAuctionEvent(ctx, itemID, a.Seller))
	return nil
}

// MakeBid places a bid above the current price. The previous highest
// bidder is refunded first, then the bid is pulled into escrow using the
// allowance party gave to the marketplace. A bidder raising their own bid
// can count the refund towards the new one.
func (e *Engine) MakeBid(ctx context.Context, party string, itemID uint64, price *num.Uint) error {
	if err := e.enter(); err != nil {
		return err
	}
	defer e.exit()

	a, ok := e.auctions[itemID]
	if !ok || !a.Active {
		return types.ErrNoActiveAuction
	}
	if price == nil || !price.GT(a.CurrentPrice) {
		if !a.HasBids() {
			return types.ErrBidTooLowForMinimum
		}
		return types.ErrBidTooLowForCurrent
	}

	refund := num.UintZero()
	if a.HasBids() && a.CurrentBidder == party {
		refund = a.CurrentPrice
	}
	if err := e.ensureCanPay(party, price, refund); err != nil {
		e.log.Debug("could not escrow bid",
			logging.ItemID(itemID),
			logging.PartyID(party),
			logging.BigUint("price", price),
			logging.Error(err),
		)
		return err
	}

	if a.HasBids() {
		e.releaseFunds(ctx, a.CurrentBidder, a.CurrentPrice)
	}
	a.CurrentBidder = party
	a.CurrentPrice = price.Clone()
	a.BidCount++

	if err := e.currency.TransferFrom(ctx, types.EscrowParty, party, types.EscrowParty, price); err != nil {
		e.log.Panic("could not escrow bid after checking funds",
			logging.ItemID(itemID),
			logging.PartyID(party),
			logging.BigUint("price", price),
			logging.Error(err),
		)
	}

	e.broker.Send(events.NewMakeBidEvent(ctx, itemID, price, party))
	return nil
}

// ensureCanPay checks the marketplace can pull amount from party once
// refund has been paid back to it.
func (e *Engine) ensureCanPay(party string, amount, refund *num.Uint) error {
	if e.currency.Allowance(party, types.EscrowParty).LT(amount) {
		return currency.ErrInsufficientAllowance
	}
	available := num.Sum(e.currency.BalanceOf(party), refund)
	if available.LT(amount) {
		return currency.ErrInsufficientBalance
	}
	return nil
}

// FinishAuction settles an auction once it ran for the configured
// duration. Anyone can finish an auction. With enough bids the highest
// bidder gets the item and the seller the currency, otherwise the item
// goes back to the seller and the highest bidder, if any, is refunded.
func (e *Engine) FinishAuction(ctx context.Context, party string, itemID uint64) (bool, error) {
	if err := e.enter(); err != nil {
		return false, err
	}
	defer e.exit()

	a, ok := e.auctions[itemID]
	if !ok || !a.Active {
		return false, types.ErrNoActiveAuction
	}
	if now := e.timeService.GetTimeNow(); now.Before(a.EndsAt(e.cfg.AuctionDuration.Get())) {
		return false, types.ErrAuctionStillRunning
	}
	if err := e.ensureCustody(a); err != nil {
		return false, err
	}

	e.deactivate(a)
	success := a.BidCount >= e.cfg.MinBidsForSuccess && a.HasBids()
	if success {
		e.releaseItem(ctx, itemID, a.CurrentBidder)
		e.releaseFunds(ctx, a.Seller, a.CurrentPrice)
	} else {
		e.releaseItem(ctx, itemID, a.Seller)
		if a.HasBids() {
			e.releaseFunds(ctx, a.CurrentBidder, a.CurrentPrice)
		}
	}

	e.log.Debug("auction finished",
		logging.ItemID(itemID),
		logging.PartyID(party),
		logging.Bool("success", success),
		logging.Uint64("bids", a.BidCount),
		logging.BigUint("price", a.CurrentPrice),
	)
	e.broker.Send(events.NewFinishAuctionEvent(ctx, itemID, success))
	return success, nil
}

// ensureCustody checks the marketplace holds both the item and the
// highest bid of the auction.
func (e *Engine) ensureCustody(a *types.Auction) error {
	if err := e.ensureInEscrow(a.ItemID); err != nil {
		return err
	}
	if a.HasBids() {
		return e.ensureEscrowCovers(a.CurrentPrice)
	}
	return nil
}

func (e *Engine) deactivate(a *types.Auction) {
	a.Active = false
	e.expiring.remove(a.ItemID, a.StartTime)
}
