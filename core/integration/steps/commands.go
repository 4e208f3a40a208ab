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
	"context"
	"fmt"
	"strconv"

	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/libs/num"

	"github.com/cucumber/godog"
)

// itemRow is a command from a party targeting a single item.
type itemRow struct {
	row    RowWrapper
	action string
}

func (r itemRow) Party() string { return r.row.MustStr("party") }
func (r itemRow) Item() uint64  { return r.row.MustU64("item") }

func (r itemRow) Price() *num.Uint {
	return r.row.MustAmount("price")
}

func (r itemRow) Reference() string {
	return fmt.Sprintf("%s %s item %d", r.Party(), r.action, r.Item())
}

func (r itemRow) Error() string {
	return r.row.Str("error")
}

func (r itemRow) ExpectError() bool {
	return r.row.Str("error") != ""
}

func parseItemTable(table *godog.Table, withPrice bool) []RowWrapper {
	required := []string{"party", "item"}
	if withPrice {
		required = append(required, "price")
	}
	return StrictParseTable(table, required, []string{"error"})
}

func deliverItemCommands(exec Executor, table *godog.Table, action string, withPrice bool, cmd func(itemRow) types.Command) error {
	for _, r := range parseItemTable(table, withPrice) {
		row := itemRow{row: r, action: action}
		_, err := exec.Deliver(context.Background(), row.Party(), cmd(row))
		if err := checkExpectedError(row, err); err != nil {
			return err
		}
	}
	return nil
}

func PartiesListTheFollowingItems(exec Executor, table *godog.Table) error {
	return deliverItemCommands(exec, table, "list", true, func(r itemRow) types.Command {
		return types.ListItem{ItemID: r.Item(), Price: r.Price()}
	})
}

func PartiesCancelTheFollowingListings(exec Executor, table *godog.Table) error {
	return deliverItemCommands(exec, table, "cancel listing of", false, func(r itemRow) types.Command {
		return types.CancelListing{ItemID: r.Item()}
	})
}

func PartiesBuyTheFollowingItems(exec Executor, table *godog.Table) error {
	return deliverItemCommands(exec, table, "buy", false, func(r itemRow) types.Command {
		return types.BuyItem{ItemID: r.Item()}
	})
}

func PartiesListTheFollowingItemsOnAuction(exec Executor, table *godog.Table) error {
	return deliverItemCommands(exec, table, "auction", true, func(r itemRow) types.Command {
		return types.ListItemOnAuction{ItemID: r.Item(), MinPrice: r.Price()}
	})
}

func PartiesCancelTheFollowingAuctions(exec Executor, table *godog.Table) error {
	return deliverItemCommands(exec, table, "cancel auction of", false, func(r itemRow) types.Command {
		return types.CancelAuction{ItemID: r.Item()}
	})
}

func PartiesPlaceTheFollowingBids(exec Executor, table *godog.Table) error {
	return deliverItemCommands(exec, table, "bid on", true, func(r itemRow) types.Command {
		return types.MakeBid{ItemID: r.Item(), Price: r.Price()}
	})
}

// PartiesFinishTheFollowingAuctions finishes the auctions, the optional
// success column is checked against the outcome.
func PartiesFinishTheFollowingAuctions(exec Executor, table *godog.Table) error {
	for _, r := range StrictParseTable(table, []string{
		"party",
		"item",
	}, []string{
		"success",
		"error",
	}) {
		row := itemRow{row: r, action: "finish auction of"}
		res, err := exec.Deliver(context.Background(), row.Party(), types.FinishAuction{ItemID: row.Item()})
		if err := checkExpectedError(row, err); err != nil {
			return err
		}
		if err == nil && r.Str("success") != "" && res.Success != r.MustBool("success") {
			return formatDiff(fmt.Sprintf("unexpected outcome for %s", row.Reference()),
				map[string]string{"success": r.MustStr("success")},
				map[string]string{"success": strconv.FormatBool(res.Success)},
			)
		}
	}
	return nil
}
