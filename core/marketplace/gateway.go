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

	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/logging"
)

// CreateItem mints a new item through the registry, straight to owner.
// Anyone can create items, the registry only accepts mints coming from
// the marketplace.
func (e *Engine) CreateItem(ctx context.Context, caller, uri, owner string) (uint64, error) {
	if err := e.enter(); err != nil {
		return 0, err
	}
	defer e.exit()

	itemID, err := e.registry.Mint(ctx, types.EscrowParty, uri, owner)
	if err != nil {
		e.log.Debug("could not create item",
			logging.PartyID(caller),
			logging.Error(err),
		)
		return 0, err
	}

	if e.log.IsDebug() {
		e.log.Debug("item created",
			logging.PartyID(caller),
			logging.ItemID(itemID),
			logging.String("owner", owner),
			logging.String("uri", uri),
		)
	}
	e.broker.Send(events.NewItemCreatedEvent(ctx, uri, owner, itemID))
	return itemID, nil
}
