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

import "code.vegaprotocol.io/marketplace/libs/num"

// Command is a state changing instruction submitted by a party.
type Command interface {
	// CommandName is the name used in logs and error events.
	CommandName() string
}

type CreateItem struct {
	URI   string
	Owner string
}

func (CreateItem) CommandName() string { return "CreateItem" }

type ListItem struct {
	ItemID uint64
	Price  *num.Uint
}

func (ListItem) CommandName() string { return "ListItem" }

type CancelListing struct {
	ItemID uint64
}

func (CancelListing) CommandName() string { return "CancelListing" }

type BuyItem struct {
	ItemID uint64
}

func (BuyItem) CommandName() string { return "BuyItem" }

type ListItemOnAuction struct {
	ItemID   uint64
	MinPrice *num.Uint
}

func (ListItemOnAuction) CommandName() string { return "ListItemOnAuction" }

type CancelAuction struct {
	ItemID uint64
}

func (CancelAuction) CommandName() string { return "CancelAuction" }

type MakeBid struct {
	ItemID uint64
	Price  *num.Uint
}

func (MakeBid) CommandName() string { return "MakeBid" }

type FinishAuction struct {
	ItemID uint64
}

func (FinishAuction) CommandName() string { return "FinishAuction" }

// ApproveCurrency sets the amount Spender can move out of the submitter's
// balance.
type ApproveCurrency struct {
	Spender string
	Amount  *num.Uint
}

func (ApproveCurrency) CommandName() string { return "ApproveCurrency" }

// ApproveItem allows Spender to transfer a single item owned by the
// submitter.
type ApproveItem struct {
	Spender string
	ItemID  uint64
}

func (ApproveItem) CommandName() string { return "ApproveItem" }

type TransferCurrency struct {
	To     string
	Amount *num.Uint
}

func (TransferCurrency) CommandName() string { return "TransferCurrency" }
