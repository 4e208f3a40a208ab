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

package steps

import (
	"fmt"
	"strconv"

	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/core/integration/stubs"
	"code.vegaprotocol.io/marketplace/libs/num"

	"github.com/cucumber/godog"
)

type itemEvent interface {
	ItemID() uint64
}

type sellerEvent interface {
	Seller() string
}

type priceEvent interface {
	Price() *num.Uint
}

// TheFollowingEventsShouldBeEmitted checks the marketplace events sent
// since the last check, in order. Empty cells are not checked. The events
// checked are dropped from the broker.
func TheFollowingEventsShouldBeEmitted(broker *stubs.BrokerStub, table *godog.Table) error {
	rows := StrictParseTable(table, []string{
		"type",
	}, []string{
		"item",
		"party",
		"price",
		"success",
	})
	evts := broker.GetMarketplaceEvents()
	defer func() {
		for _, t := range events.MarketplaceEvents() {
			broker.ClearByType(t)
		}
	}()

	if len(rows) != len(evts) {
		names := make([]string, 0, len(evts))
		for _, e := range evts {
			names = append(names, e.Type().String())
		}
		return fmt.Errorf("expected %d marketplace events, got %d: %v", len(rows), len(evts), names)
	}

	for i, r := range rows {
		e := evts[i]
		expected, got := map[string]string{"type": r.MustStr("type")}, map[string]string{"type": e.Type().String()}
		if r.Str("item") != "" {
			expected["item"] = r.MustStr("item")
			if ie, ok := e.(itemEvent); ok {
				got["item"] = u64ToS(ie.ItemID())
			}
		}
		if r.Str("party") != "" {
			expected["party"] = r.MustStr("party")
			got["party"] = eventParty(e)
		}
		if r.Str("price") != "" {
			expected["price"] = formatAmount(r.MustAmount("price"))
			got["price"] = eventPrice(e)
		}
		if r.Str("success") != "" {
			expected["success"] = strconv.FormatBool(r.MustBool("success"))
			if fe, ok := e.(*events.FinishAuction); ok {
				got["success"] = strconv.FormatBool(fe.Success())
			}
		}
		if err := compareFields(fmt.Sprintf("unexpected event at position %d", i+1), expected, got); err != nil {
			return err
		}
	}
	return nil
}

func TheFollowingTransactionsShouldHaveFailed(broker *stubs.BrokerStub, table *godog.Table) error {
	rows := StrictParseTable(table, []string{
		"party",
		"command",
		"error",
	}, nil)
	errs := broker.GetTxErrors()
	defer broker.ClearByType(events.TxErrEvent)

	if len(rows) != len(errs) {
		return fmt.Errorf("expected %d failed transactions, got %d", len(rows), len(errs))
	}
	for i, r := range rows {
		e := errs[i]
		expected := map[string]string{
			"party":   r.MustStr("party"),
			"command": r.MustStr("command"),
			"error":   r.MustStr("error"),
		}
		got := map[string]string{
			"party":   e.PartyID(),
			"command": e.Command(),
			"error":   e.ErrMsg(),
		}
		if err := compareFields(fmt.Sprintf("unexpected failed transaction at position %d", i+1), expected, got); err != nil {
			return err
		}
	}
	return nil
}

func eventParty(e events.Event) string {
	switch evt := e.(type) {
	case *events.ItemCreated:
		return evt.Owner()
	case *events.MakeBid:
		return evt.Bidder()
	case sellerEvent:
		return evt.Seller()
	}
	return ""
}

func eventPrice(e events.Event) string {
	switch evt := e.(type) {
	case *events.ListItemOnAuction:
		return formatAmount(evt.MinPrice())
	case priceEvent:
		return formatAmount(evt.Price())
	}
	return ""
}
