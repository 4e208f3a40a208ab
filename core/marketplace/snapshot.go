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
	"context"
	"encoding/json"
	"sort"

	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/pkg/errors"
)

const booksKey = "books"

var ErrInvalidSnapshotState = errors.New("invalid marketplace snapshot state")

func (e *Engine) Namespace() types.SnapshotNamespace {
	return types.MarketplaceSnapshot
}

func (e *Engine) Keys() []string {
	return []string{booksKey}
}

func (e *Engine) GetState(k string) ([]byte, error) {
	if k != booksKey {
		return nil, types.ErrSnapshotKeyDoesNotExist
	}

	pl := types.PayloadMarketplace{
		Listings: make([]*types.Listing, 0, len(e.listings)),
		Auctions: make([]*types.Auction, 0, len(e.auctions)),
	}
	for _, l := range e.listings {
		pl.Listings = append(pl.Listings, l.Clone())
	}
	sort.Slice(pl.Listings, func(i, j int) bool { return pl.Listings[i].ItemID < pl.Listings[j].ItemID })
	for _, a := range e.auctions {
		pl.Auctions = append(pl.Auctions, a.Clone())
	}
	sort.Slice(pl.Auctions, func(i, j int) bool { return pl.Auctions[i].ItemID < pl.Auctions[j].ItemID })
	return json.Marshal(pl)
}

func (e *Engine) LoadState(_ context.Context, k string, state []byte) error {
	if k != booksKey {
		return types.ErrSnapshotKeyDoesNotExist
	}
	var pl types.PayloadMarketplace
	if err := json.Unmarshal(state, &pl); err != nil {
		return errors.Wrap(err, "could not decode marketplace snapshot")
	}

	listings := make(map[uint64]*types.Listing, len(pl.Listings))
	for _, l := range pl.Listings {
		if l.Price == nil {
			return errors.Wrapf(ErrInvalidSnapshotState, "listing %d has no price", l.ItemID)
		}
		listings[l.ItemID] = l
	}
	auctions := make(map[uint64]*types.Auction, len(pl.Auctions))
	expiring := newExpiringAuctions()
	for _, a := range pl.Auctions {
		if a.MinPrice == nil || a.CurrentPrice == nil {
			return errors.Wrapf(ErrInvalidSnapshotState, "auction %d has no price", a.ItemID)
		}
		if a.Active {
			if l, ok := listings[a.ItemID]; ok && l.Active {
				return errors.Wrapf(ErrInvalidSnapshotState, "item %d is both listed and on auction", a.ItemID)
			}
			expiring.insert(a.ItemID, a.StartTime)
		}
		auctions[a.ItemID] = a
	}

	e.log.Debug("restoring marketplace snapshot",
		logging.Int("n_listings", len(listings)),
		logging.Int("n_auctions", len(auctions)),
		logging.Int("n_active_auctions", expiring.count()),
	)
	e.listings = listings
	e.auctions = auctions
	e.expiring = expiring
	return nil
}
