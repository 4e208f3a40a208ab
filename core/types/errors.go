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

package types

import "errors"

var (
	// ErrNoActiveListing is returned when a listing operation targets an item
	// without an active fixed-price listing.
	ErrNoActiveListing = errors.New("no active listing")
	// ErrNoActiveAuction is returned when an auction operation targets an item
	// without an active auction.
	ErrNoActiveAuction = errors.New("there is no auction")
	// ErrNotSeller is returned when the party is not the seller recorded for
	// the listing or auction.
	ErrNotSeller = errors.New("party is not the seller")
	// ErrNotForSale is returned when buying an item which is not listed.
	ErrNotForSale = errors.New("item is not on sale")
	// ErrInvalidMinPrice is returned when an auction is created with a zero
	// minimum price.
	ErrInvalidMinPrice = errors.New("auction minimum price must be positive")
	// ErrBidTooLowForMinimum is returned when the first bid does not exceed
	// the auction minimum price.
	ErrBidTooLowForMinimum = errors.New("bid must be greater than the minimum price")
	// ErrBidTooLowForCurrent is returned when a bid does not exceed the
	// current highest bid.
	ErrBidTooLowForCurrent = errors.New("bid must be greater than the current price")
	// ErrAuctionStillRunning is returned when finishing an auction before its
	// minimum duration elapsed.
	ErrAuctionStillRunning = errors.New("auction is still running")
	// ErrReentrantCall is returned when a collaborator calls back into the
	// marketplace while an operation is in flight.
	ErrReentrantCall = errors.New("reentrant call to the marketplace")
	// ErrItemNotInEscrow is returned when an active listing or auction refers
	// to an item the marketplace does not hold.
	ErrItemNotInEscrow = errors.New("item is not held in escrow")
	// ErrAlreadyListed is returned when listing an item which already has an
	// active listing or auction.
	ErrAlreadyListed = errors.New("item is already listed")
	// ErrInsufficientEscrow is returned when the currency held by the
	// marketplace does not cover what it owes for an auction.
	ErrInsufficientEscrow = errors.New("escrow balance does not cover the auction")
	// ErrInvalidParty is returned when an empty party is used.
	ErrInvalidParty = errors.New("invalid party")
)
