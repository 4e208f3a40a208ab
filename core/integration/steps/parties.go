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

	"code.vegaprotocol.io/marketplace/core/processor"
	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/libs/num"

	"github.com/cucumber/godog"
)

// Executor applies commands the way the node does.
type Executor interface {
	Deliver(ctx context.Context, party string, cmd types.Command) (processor.Result, error)
}

type Minter interface {
	Mint(ctx context.Context, party string, amount *num.Uint) error
}

func TheFollowingPartiesAreFunded(ccy Minter, table *godog.Table) error {
	for _, r := range StrictParseTable(table, []string{
		"party",
		"amount",
	}, nil) {
		party, amount := r.MustStr("party"), r.MustAmount("amount")
		if err := ccy.Mint(context.Background(), party, amount); err != nil {
			return fmt.Errorf("couldn't fund party(%s) with amount(%s): %w", party, formatAmount(amount), err)
		}
	}
	return nil
}

func PartiesCreateTheFollowingItems(exec Executor, table *godog.Table) error {
	for _, r := range StrictParseTable(table, []string{
		"party",
		"uri",
		"owner",
	}, []string{
		"item",
		"error",
	}) {
		row := createItemRow{row: r}
		res, err := exec.Deliver(context.Background(), row.Party(), types.CreateItem{
			URI:   row.URI(),
			Owner: row.Owner(),
		})
		if err := checkExpectedError(row, err); err != nil {
			return err
		}
		if err == nil && row.row.Str("item") != "" && res.ItemID != row.row.MustU64("item") {
			return formatDiff(fmt.Sprintf("unexpected id for item created by %s", row.Reference()),
				map[string]string{"item": row.row.MustStr("item")},
				map[string]string{"item": u64ToS(res.ItemID)},
			)
		}
	}
	return nil
}

type createItemRow struct {
	row RowWrapper
}

func (r createItemRow) Party() string { return r.row.MustStr("party") }
func (r createItemRow) URI() string   { return r.row.MustStr("uri") }
func (r createItemRow) Owner() string { return r.row.MustStr("owner") }

func (r createItemRow) Reference() string {
	return fmt.Sprintf("create item %s for %s", r.URI(), r.Owner())
}

func (r createItemRow) Error() string {
	return r.row.Str("error")
}

func (r createItemRow) ExpectError() bool {
	return r.row.Str("error") != ""
}

func PartiesApproveTheMarketplaceForTheFollowingItems(exec Executor, table *godog.Table) error {
	for _, r := range StrictParseTable(table, []string{
		"party",
		"item",
	}, []string{
		"error",
	}) {
		row := itemRow{row: r, action: "approve marketplace"}
		_, err := exec.Deliver(context.Background(), row.Party(), types.ApproveItem{
			Spender: types.EscrowParty,
			ItemID:  row.Item(),
		})
		if err := checkExpectedError(row, err); err != nil {
			return err
		}
	}
	return nil
}

func PartiesApproveTheMarketplaceToSpend(exec Executor, table *godog.Table) error {
	for _, r := range StrictParseTable(table, []string{
		"party",
		"amount",
	}, nil) {
		party, amount := r.MustStr("party"), r.MustAmount("amount")
		_, err := exec.Deliver(context.Background(), party, types.ApproveCurrency{
			Spender: types.EscrowParty,
			Amount:  amount,
		})
		if err != nil {
			return fmt.Errorf("party(%s) couldn't approve the marketplace for amount(%s): %w", party, formatAmount(amount), err)
		}
	}
	return nil
}
