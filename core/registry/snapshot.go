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

package registry

import (
	"context"
	"encoding/json"
	"sort"

	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/pkg/errors"
)

const itemsKey = "items"

func (e *Engine) Namespace() types.SnapshotNamespace {
	return types.RegistrySnapshot
}

func (e *Engine) Keys() []string {
	return []string{itemsKey}
}

func (e *Engine) GetState(k string) ([]byte, error) {
	if k != itemsKey {
		return nil, types.ErrSnapshotKeyDoesNotExist
	}

	pl := types.PayloadRegistry{
		NextID:    e.nextID,
		Items:     make([]*types.Item, 0, len(e.items)),
		Operators: []*types.Operator{},
	}
	for _, it := range e.items {
		pl.Items = append(pl.Items, &types.Item{
			ID:       it.id,
			URI:      it.uri,
			Owner:    it.owner,
			Approved: it.approved,
		})
	}
	sort.Slice(pl.Items, func(i, j int) bool { return pl.Items[i].ID < pl.Items[j].ID })
	for owner, ops := range e.operators {
		for op := range ops {
			pl.Operators = append(pl.Operators, &types.Operator{Owner: owner, Operator: op})
		}
	}
	sort.Slice(pl.Operators, func(i, j int) bool {
		if pl.Operators[i].Owner == pl.Operators[j].Owner {
			return pl.Operators[i].Operator < pl.Operators[j].Operator
		}
		return pl.Operators[i].Owner < pl.Operators[j].Owner
	})
	return json.Marshal(pl)
}

func (e *Engine) LoadState(_ context.Context, k string, state []byte) error {
	if k != itemsKey {
		return types.ErrSnapshotKeyDoesNotExist
	}
	var pl types.PayloadRegistry
	if err := json.Unmarshal(state, &pl); err != nil {
		return errors.Wrap(err, "could not decode registry snapshot")
	}
	if pl.NextID == 0 {
		pl.NextID = 1
	}

	items := make(map[uint64]*item, len(pl.Items))
	for _, it := range pl.Items {
		if it.ID == 0 || it.ID >= pl.NextID {
			return errors.Errorf("item id %d out of range, next id is %d", it.ID, pl.NextID)
		}
		items[it.ID] = &item{
			id:       it.ID,
			uri:      it.URI,
			owner:    it.Owner,
			approved: it.Approved,
		}
	}
	operators := map[string]map[string]struct{}{}
	for _, op := range pl.Operators {
		if _, ok := operators[op.Owner]; !ok {
			operators[op.Owner] = map[string]struct{}{}
		}
		operators[op.Owner][op.Operator] = struct{}{}
	}

	e.log.Debug("restoring registry snapshot",
		logging.Int("n_items", len(items)),
		logging.Uint64("next_id", pl.NextID),
	)
	e.nextID = pl.NextID
	e.items = items
	e.operators = operators
	return nil
}
