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

package currency

import (
	"context"
	"encoding/json"
	"sort"

	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/libs/num"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/pkg/errors"
)

const ledgerKey = "ledger"

func (e *Engine) Namespace() types.SnapshotNamespace {
	return types.CurrencySnapshot
}

func (e *Engine) Keys() []string {
	return []string{ledgerKey}
}

func (e *Engine) GetState(k string) ([]byte, error) {
	if k != ledgerKey {
		return nil, types.ErrSnapshotKeyDoesNotExist
	}

	pl := types.PayloadCurrency{
		Balances:   make([]*types.PartyAmount, 0, len(e.balances)),
		Allowances: []*types.Allowance{},
	}
	for party, b := range e.balances {
		pl.Balances = append(pl.Balances, &types.PartyAmount{Party: party, Amount: b.String()})
	}
	sort.Slice(pl.Balances, func(i, j int) bool {
		return pl.Balances[i].Party < pl.Balances[j].Party
	})
	for owner, spenders := range e.allowances {
		for spender, a := range spenders {
			pl.Allowances = append(pl.Allowances, &types.Allowance{Owner: owner, Spender: spender, Amount: a.String()})
		}
	}
	sort.Slice(pl.Allowances, func(i, j int) bool {
		if pl.Allowances[i].Owner == pl.Allowances[j].Owner {
			return pl.Allowances[i].Spender < pl.Allowances[j].Spender
		}
		return pl.Allowances[i].Owner < pl.Allowances[j].Owner
	})
	return json.Marshal(pl)
}

func (e *Engine) LoadState(_ context.Context, k string, state []byte) error {
	if k != ledgerKey {
		return types.ErrSnapshotKeyDoesNotExist
	}
	var pl types.PayloadCurrency
	if err := json.Unmarshal(state, &pl); err != nil {
		return errors.Wrap(err, "could not decode currency snapshot")
	}

	balances := make(map[string]*num.Uint, len(pl.Balances))
	supply := num.UintZero()
	for _, b := range pl.Balances {
		amount, overflow := num.UintFromString(b.Amount, 10)
		if overflow {
			return errors.Wrapf(num.ErrInvalidUint, "balance of %s", b.Party)
		}
		balances[b.Party] = amount
		supply.Add(supply, amount)
	}
	allowances := map[string]map[string]*num.Uint{}
	for _, a := range pl.Allowances {
		amount, overflow := num.UintFromString(a.Amount, 10)
		if overflow {
			return errors.Wrapf(num.ErrInvalidUint, "allowance of %s for %s", a.Owner, a.Spender)
		}
		if _, ok := allowances[a.Owner]; !ok {
			allowances[a.Owner] = map[string]*num.Uint{}
		}
		allowances[a.Owner][a.Spender] = amount
	}

	e.log.Debug("restoring currency snapshot",
		logging.Int("n_balances", len(balances)),
		logging.Int("n_allowances", len(pl.Allowances)),
	)
	e.balances = balances
	e.allowances = allowances
	e.totalSupply = supply
	return nil
}
