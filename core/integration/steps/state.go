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
	"strings"
	"time"

	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/libs/num"

	"github.com/cucumber/godog"
)

type Registry interface {
	OwnerOf(id uint64) (string, error)
}

type Ledger interface {
	BalanceOf(party string) *num.Uint
}

type Marketplace interface {
	GetListing(itemID uint64) (types.Listing, error)
	GetAuction(itemID uint64) (types.Auction, error)
	TotalEscrowed() *num.Uint
	FinishableAuctions(now time.Time) []uint64
}

type Time interface {
	GetTimeNow() time.Time
	SetTime(t time.Time)
}

func TheItemsShouldBeOwnedBy(registry Registry, table *godog.Table) error {
	for _, r := range StrictParseTable(table, []string{
		"item",
		"owner",
	}, nil) {
		item, expected := r.MustU64("item"), r.MustStr("owner")
		owner, err := registry.OwnerOf(item)
		if err != nil {
			return fmt.Errorf("couldn't get the owner of item(%d): %w", item, err)
		}
		if owner != expected {
			return formatDiff(fmt.Sprintf("unexpected owner for item(%d)", item),
				map[string]string{"owner": expected},
				map[string]string{"owner": owner},
			)
		}
	}
	return nil
}

func ThePartiesShouldHaveTheFollowingBalances(ledger Ledger, table *godog.Table) error {
	for _, r := range StrictParseTable(table, []string{
		"party",
		"balance",
	}, nil) {
		party, expected := r.MustStr("party"), r.MustAmount("balance")
		if balance := ledger.BalanceOf(party); !balance.EQ(expected) {
			return formatDiff(fmt.Sprintf("unexpected balance for party(%s)", party),
				map[string]string{"balance": formatAmount(expected)},
				map[string]string{"balance": formatAmount(balance)},
			)
		}
	}
	return nil
}

// TheEscrowShouldHold checks the escrow party balance and the funds the
// marketplace accounts for both match the expected amount.
func TheEscrowShouldHold(ledger Ledger, mkt Marketplace, amount string) error {
	expected, err := num.ParseUnits(amount, tokenDecimals)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	balance, escrowed := ledger.BalanceOf(types.EscrowParty), mkt.TotalEscrowed()
	if !balance.EQ(expected) || !escrowed.EQ(expected) {
		return formatDiff("unexpected escrow",
			map[string]string{
				"balance":  formatAmount(expected),
				"escrowed": formatAmount(expected),
			},
			map[string]string{
				"balance":  formatAmount(balance),
				"escrowed": formatAmount(escrowed),
			},
		)
	}
	return nil
}

func TheListingsShouldBe(mkt Marketplace, table *godog.Table) error {
	for _, r := range StrictParseTable(table, []string{
		"item",
		"active",
	}, []string{
		"seller",
		"price",
	}) {
		item := r.MustU64("item")
		listing, err := mkt.GetListing(item)
		if err != nil {
			return fmt.Errorf("couldn't get listing for item(%d): %w", item, err)
		}
		expected, got := map[string]string{}, map[string]string{}
		expected["active"], got["active"] = strconv.FormatBool(r.MustBool("active")), strconv.FormatBool(listing.Active)
		if r.HasColumn("seller") {
			expected["seller"], got["seller"] = r.MustStr("seller"), listing.Seller
		}
		if r.HasColumn("price") {
			expected["price"], got["price"] = formatAmount(r.MustAmount("price")), formatAmount(listing.Price)
		}
		if err := compareFields(fmt.Sprintf("unexpected listing for item(%d)", item), expected, got); err != nil {
			return err
		}
	}
	return nil
}

func TheAuctionsShouldBe(mkt Marketplace, table *godog.Table) error {
	for _, r := range StrictParseTable(table, []string{
		"item",
		"active",
	}, []string{
		"seller",
		"min price",
		"current price",
		"bidder",
		"bids",
	}) {
		item := r.MustU64("item")
		auction, err := mkt.GetAuction(item)
		if err != nil {
			return fmt.Errorf("couldn't get auction for item(%d): %w", item, err)
		}
		expected, got := map[string]string{}, map[string]string{}
		expected["active"], got["active"] = strconv.FormatBool(r.MustBool("active")), strconv.FormatBool(auction.Active)
		if r.HasColumn("seller") {
			expected["seller"], got["seller"] = r.MustStr("seller"), auction.Seller
		}
		if r.HasColumn("min price") {
			expected["min price"], got["min price"] = formatAmount(r.MustAmount("min price")), formatAmount(auction.MinPrice)
		}
		if r.HasColumn("current price") {
			expected["current price"], got["current price"] = formatAmount(r.MustAmount("current price")), formatAmount(auction.CurrentPrice)
		}
		if r.HasColumn("bidder") {
			expected["bidder"], got["bidder"] = r.Str("bidder"), auction.CurrentBidder
		}
		if r.HasColumn("bids") {
			expected["bids"], got["bids"] = u64ToS(r.MustU64("bids")), u64ToS(auction.BidCount)
		}
		if err := compareFields(fmt.Sprintf("unexpected auction for item(%d)", item), expected, got); err != nil {
			return err
		}
	}
	return nil
}

// TheAuctionsThatCanBeFinishedAre checks the comma separated list of items,
// oldest auction first. An empty list means none can be finished yet.
func TheAuctionsThatCanBeFinishedAre(mkt Marketplace, ts Time, items string) error {
	got := mkt.FinishableAuctions(ts.GetTimeNow())
	gotStr := make([]string, 0, len(got))
	for _, id := range got {
		gotStr = append(gotStr, u64ToS(id))
	}
	expected := []string{}
	for _, s := range strings.Split(items, ",") {
		if s = strings.TrimSpace(s); s != "" {
			expected = append(expected, s)
		}
	}
	if strings.Join(expected, ",") != strings.Join(gotStr, ",") {
		return formatDiff("unexpected finishable auctions",
			map[string]string{"items": strings.Join(expected, ",")},
			map[string]string{"items": strings.Join(gotStr, ",")},
		)
	}
	return nil
}

func TheTimeIsUpdatedTo(ts Time, newTime string) error {
	t, err := time.Parse(time.RFC3339Nano, newTime)
	if err != nil {
		return fmt.Errorf("invalid time %q: %w", newTime, err)
	}
	if t.Before(ts.GetTimeNow()) {
		return fmt.Errorf("time cannot go backward: %s is before %s", newTime, ts.GetTimeNow().Format(time.RFC3339))
	}
	ts.SetTime(t)
	return nil
}

func TheNetworkMovesAhead(ts Time, duration string) error {
	d, err := time.ParseDuration(duration)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", duration, err)
	}
	if d < 0 {
		return fmt.Errorf("time cannot go backward: %s", duration)
	}
	ts.SetTime(ts.GetTimeNow().Add(d))
	return nil
}

func compareFields(msg string, expected, got map[string]string) error {
	for k, v := range expected {
		if got[k] != v {
			return formatDiff(msg, expected, got)
		}
	}
	return nil
}

func u64ToS(n uint64) string {
	return strconv.FormatUint(n, 10)
}
