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
	"time"

	"github.com/google/btree"
)

type auctionAtTS struct {
	ts     int64
	itemID uint64
}

func lessAuctionAtTS(a, b *auctionAtTS) bool {
	if a.ts == b.ts {
		return a.itemID < b.itemID
	}
	return a.ts < b.ts
}

// expiringAuctions indexes the active auctions by start time.
type expiringAuctions struct {
	auctions *btree.BTreeG[*auctionAtTS]
}

func newExpiringAuctions() *expiringAuctions {
	return &expiringAuctions{
		auctions: btree.NewG(2, lessAuctionAtTS),
	}
}

func (a *expiringAuctions) insert(itemID uint64, start time.Time) {
	a.auctions.ReplaceOrInsert(&auctionAtTS{ts: start.UnixNano(), itemID: itemID})
}

func (a *expiringAuctions) remove(itemID uint64, start time.Time) {
	a.auctions.Delete(&auctionAtTS{ts: start.UnixNano(), itemID: itemID})
}

func (a *expiringAuctions) count() int {
	return a.auctions.Len()
}

// endedAt returns the items of the auctions started at or before t.
func (a *expiringAuctions) endedAt(t time.Time) []uint64 {
	ids := []uint64{}
	ts := t.UnixNano()
	a.auctions.Ascend(func(item *auctionAtTS) bool {
		if item.ts > ts {
			return false
		}
		ids = append(ids, item.itemID)
		return true
	})
	return ids
}

// endedBetween returns the items of the auctions started after from and at
// or before to.
func (a *expiringAuctions) endedBetween(from, to time.Time) []uint64 {
	ids := []uint64{}
	fts, tts := from.UnixNano(), to.UnixNano()
	a.auctions.Ascend(func(item *auctionAtTS) bool {
		if item.ts > tts {
			return false
		}
		if item.ts > fts {
			ids = append(ids, item.itemID)
		}
		return true
	})
	return ids
}
