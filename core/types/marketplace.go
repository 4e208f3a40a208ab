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

import (
	"time"

	"code.vegaprotocol.io/marketplace/libs/num"
)

// EscrowParty is the party owning everything the marketplace holds on behalf
// of sellers and bidders: listed items and the currency of the highest bids.
const EscrowParty = "*"

// Listing is a fixed-price offer for a single item.
type Listing struct {
	ItemID uint64    `json:"item_id"`
	Seller string    `json:"seller"`
	Price  *num.Uint `json:"price"`
	Active bool      `json:"active"`
}

func (l Listing) Clone() *Listing {
	cpy := l
	if l.Price != nil {
		cpy.Price = l.Price.Clone()
	}
	return &cpy
}

// Auction is a timed, ascending price auction for a single item.
// CurrentBidder is empty until the first bid is made, CurrentPrice starts
// at MinPrice and never decreases.
type Auction struct {
	ItemID        uint64    `json:"item_id"`
	Seller        string    `json:"seller"`
	MinPrice      *num.Uint `json:"min_price"`
	CurrentPrice  *num.Uint `json:"current_price"`
	CurrentBidder string    `json:"current_bidder"`
	BidCount      uint64    `json:"bid_count"`
	StartTime     time.Time `json:"start_time"`
	Active        bool      `json:"active"`
}

func (a Auction) Clone() *Auction {
	cpy := a
	if a.MinPrice != nil {
		cpy.MinPrice = a.MinPrice.Clone()
	}
	if a.CurrentPrice != nil {
		cpy.CurrentPrice = a.CurrentPrice.Clone()
	}
	return &cpy
}

// HasBids returns true once at least one bid was accepted.
func (a Auction) HasBids() bool {
	return a.BidCount > 0
}

// EndsAt returns the earliest time the auction can be finished.
func (a Auction) EndsAt(duration time.Duration) time.Time {
	return a.StartTime.Add(duration)
}
