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

// CurrencyTransfer is emitted by the settlement currency on every balance
// movement.
type CurrencyTransfer struct {
	*Base
	from, to string
	amount   *num.Uint
}

func NewCurrencyTransferEvent(ctx context.Context, from, to string, amount *num.Uint) *CurrencyTransfer {
	return &CurrencyTransfer{
		Base:   newBase(ctx, CurrencyTransferEvent),
		from:   from,
		to:     to,
		amount: amount.Clone(),
	}
}

func (e CurrencyTransfer) From() string      { return e.from }
func (e CurrencyTransfer) To() string        { return e.to }
func (e CurrencyTransfer) Amount() *num.Uint { return e.amount.Clone() }

func (e CurrencyTransfer) IsParty(id string) bool {
	return e.from == id || e.to == id
}

type CurrencyApproval struct {
	*Base
	owner, spender string
	amount         *num.Uint
}

func NewCurrencyApprovalEvent(ctx context.Context, owner, spender string, amount *num.Uint) *CurrencyApproval {
	return &CurrencyApproval{
		Base:    newBase(ctx, CurrencyApprovalEvent),
		owner:   owner,
		spender: spender,
		amount:  amount.Clone(),
	}
}

func (e CurrencyApproval) Owner() string     { return e.owner }
func (e CurrencyApproval) Spender() string   { return e.spender }
func (e CurrencyApproval) Amount() *num.Uint { return e.amount.Clone() }

func (e CurrencyApproval) IsParty(id string) bool {
	return e.owner == id || e.spender == id
}

// ItemTransfer is emitted by the item registry when an item changes owner.
// A mint is a transfer from the empty party.
type ItemTransfer struct {
	*Base
	from, to string
	itemID   uint64
}

func NewItemTransferEvent(ctx context.Context, from, to string, itemID uint64) *ItemTransfer {
	return &ItemTransfer{
		Base:   newBase(ctx, ItemTransferEvent),
		from:   from,
		to:     to,
		itemID: itemID,
	}
}

func (e ItemTransfer) From() string   { return e.from }
func (e ItemTransfer) To() string     { return e.to }
func (e ItemTransfer) ItemID() uint64 { return e.itemID }

func (e ItemTransfer) IsParty(id string) bool {
	return e.from == id || e.to == id
}

type ItemApproval struct {
	*Base
	owner, approved string
	itemID          uint64
}

func NewItemApprovalEvent(ctx context.Context, owner, approved string, itemID uint64) *ItemApproval {
	return &ItemApproval{
		Base:     newBase(ctx, ItemApprovalEvent),
		owner:    owner,
		approved: approved,
		itemID:   itemID,
	}
}

func (e ItemApproval) Owner() string    { return e.owner }
func (e ItemApproval) Approved() string { return e.approved }
func (e ItemApproval) ItemID() uint64   { return e.itemID }

func (e ItemApproval) IsParty(id string) bool {
	return e.owner == id || e.approved == id
}
