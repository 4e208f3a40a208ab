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
	"strings"

	vgcontext "code.vegaprotocol.io/marketplace/libs/context"
)

type Type int

// simple interface for event filtering on party ID.
type partyFilterable interface {
	Event
	IsParty(id string) bool
}

// simple interface for event filtering on item ID.
type itemFilterable interface {
	Event
	ItemID() uint64
}

// Base common denominator all event-bus events share.
type Base struct {
	ctx     context.Context
	traceID string
	seq     uint64
	et      Type
}

// Event - the base event interface type.
type Event interface {
	Type() Type
	Context() context.Context
	TraceID() string
	Sequence() uint64
	SetSequenceID(s uint64)
}

const (
	// All event type -> used by subscribers to just receive all events, has no actual corresponding event payload.
	All Type = iota
	// other event types that DO have corresponding event types.
	TimeUpdate
	TxErrEvent
	ItemCreatedEvent
	ItemListedEvent
	ListingCanceledEvent
	BuyItemEvent
	ListItemOnAuctionEvent
	CancelAuctionEvent
	MakeBidEvent
	FinishAuctionEvent
	CurrencyTransferEvent
	CurrencyApprovalEvent
	ItemTransferEvent
	ItemApprovalEvent
)

var (
	eventStrings = map[Type]string{
		All:                    "ALL",
		TimeUpdate:             "TimeUpdate",
		TxErrEvent:             "TxErrEvent",
		ItemCreatedEvent:       "ItemCreated",
		ItemListedEvent:        "ItemListed",
		ListingCanceledEvent:   "ListingCanceled",
		BuyItemEvent:           "BuyItem",
		ListItemOnAuctionEvent: "ListItemOnAuction",
		CancelAuctionEvent:     "CancelAuction",
		MakeBidEvent:           "MakeBid",
		FinishAuctionEvent:     "FinishAuction",
		CurrencyTransferEvent:  "CurrencyTransfer",
		CurrencyApprovalEvent:  "CurrencyApproval",
		ItemTransferEvent:      "ItemTransfer",
		ItemApprovalEvent:      "ItemApproval",
	}

	marketplaceEvents = []Type{
		ItemCreatedEvent,
		ItemListedEvent,
		ListingCanceledEvent,
		BuyItemEvent,
		ListItemOnAuctionEvent,
		CancelAuctionEvent,
		MakeBidEvent,
		FinishAuctionEvent,
	}
)

// A base event holds no data, so the constructor will not be called directly.
func newBase(ctx context.Context, t Type) *Base {
	ctx, tID := vgcontext.TraceIDFromContext(ctx)
	return &Base{
		ctx:     ctx,
		traceID: tID,
		et:      t,
	}
}

// TraceID returns the... traceID obviously.
func (b Base) TraceID() string {
	return b.traceID
}

func (b *Base) SetSequenceID(s uint64) {
	// sequence ID can only be set once
	if b.seq != 0 {
		return
	}
	b.seq = s
}

// Sequence returns event sequence number.
func (b Base) Sequence() uint64 {
	return b.seq
}

// Context returns context.
func (b Base) Context() context.Context {
	return b.ctx
}

// Type returns the event type.
func (b Base) Type() Type {
	return b.et
}

// MarketplaceEvents returns the event types emitted by the listing and
// auction engines.
func MarketplaceEvents() []Type {
	cpy := make([]Type, len(marketplaceEvents))
	copy(cpy, marketplaceEvents)
	return cpy
}

// TryFromString returns the event type matching the given name.
func TryFromString(s string) (*Type, bool) {
	for k, v := range eventStrings {
		if strings.EqualFold(s, v) {
			return &k, true
		}
	}
	return nil, false
}

// String get string representation of event type.
func (t Type) String() string {
	s, ok := eventStrings[t]
	if !ok {
		return "UNKNOWN EVENT"
	}
	return s
}

// PartyFilter returns a filter accepting only the events involving the
// given party.
func PartyFilter(party string) func(Event) bool {
	return func(e Event) bool {
		pe, ok := e.(partyFilterable)
		return ok && pe.IsParty(party)
	}
}

// ItemFilter returns a filter accepting only the events about the given item.
func ItemFilter(itemID uint64) func(Event) bool {
	return func(e Event) bool {
		ie, ok := e.(itemFilterable)
		return ok && ie.ItemID() == itemID
	}
}
