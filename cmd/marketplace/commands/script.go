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

package commands

import (
	"fmt"
	"strings"
	"time"

	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/libs/num"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

const (
	stepMint        = "mint"
	stepCommand     = "command"
	stepAdvanceTime = "advance-time"
)

var (
	ErrUnknownStep    = errors.New("unknown script step")
	ErrUnknownCommand = errors.New("unknown command")
)

// Script is a list of steps replayed against the marketplace, amounts are
// expressed in currency units, e.g. "1.5".
type Script struct {
	Start time.Time `toml:"start"`
	Steps []Step    `toml:"step"`
}

type Step struct {
	Type     string `toml:"type"`
	Party    string `toml:"party"`
	Command  string `toml:"command"`
	Item     uint64 `toml:"item"`
	URI      string `toml:"uri"`
	Owner    string `toml:"owner"`
	Spender  string `toml:"spender"`
	To       string `toml:"to"`
	Price    string `toml:"price"`
	Amount   string `toml:"amount"`
	Duration string `toml:"duration"`
}

// ReadScript decodes the script file, unknown keys are rejected.
func ReadScript(path string) (*Script, error) {
	s := &Script{}
	md, err := toml.DecodeFile(path, s)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode script")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, errors.Errorf("unknown keys in script: %s", strings.Join(keys, ", "))
	}
	for i, st := range s.Steps {
		switch st.Type {
		case stepMint, stepCommand, stepAdvanceTime:
		default:
			return nil, errors.Wrapf(ErrUnknownStep, "step %d: %q", i+1, st.Type)
		}
	}
	return s, nil
}

// AdvanceBy returns the duration of an advance-time step.
func (s Step) AdvanceBy() (time.Duration, error) {
	d, err := time.ParseDuration(s.Duration)
	if err != nil {
		return 0, errors.Wrap(err, "invalid duration")
	}
	if d < 0 {
		return 0, errors.Errorf("time cannot go backward: %s", s.Duration)
	}
	return d, nil
}

// MintAmount returns the amount of a mint step.
func (s Step) MintAmount(decimals uint32) (*num.Uint, error) {
	return parseAmount("amount", s.Amount, decimals)
}

// ToCommand builds the party command described by a command step.
func (s Step) ToCommand(decimals uint32) (types.Command, error) {
	switch s.Command {
	case types.CreateItem{}.CommandName():
		return types.CreateItem{URI: s.URI, Owner: s.Owner}, nil
	case types.ListItem{}.CommandName():
		price, err := parseAmount("price", s.Price, decimals)
		if err != nil {
			return nil, err
		}
		return types.ListItem{ItemID: s.Item, Price: price}, nil
	case types.CancelListing{}.CommandName():
		return types.CancelListing{ItemID: s.Item}, nil
	case types.BuyItem{}.CommandName():
		return types.BuyItem{ItemID: s.Item}, nil
	case types.ListItemOnAuction{}.CommandName():
		price, err := parseAmount("price", s.Price, decimals)
		if err != nil {
			return nil, err
		}
		return types.ListItemOnAuction{ItemID: s.Item, MinPrice: price}, nil
	case types.CancelAuction{}.CommandName():
		return types.CancelAuction{ItemID: s.Item}, nil
	case types.MakeBid{}.CommandName():
		price, err := parseAmount("price", s.Price, decimals)
		if err != nil {
			return nil, err
		}
		return types.MakeBid{ItemID: s.Item, Price: price}, nil
	case types.FinishAuction{}.CommandName():
		return types.FinishAuction{ItemID: s.Item}, nil
	case types.ApproveCurrency{}.CommandName():
		amount, err := parseAmount("amount", s.Amount, decimals)
		if err != nil {
			return nil, err
		}
		return types.ApproveCurrency{Spender: spenderOrEscrow(s.Spender), Amount: amount}, nil
	case types.ApproveItem{}.CommandName():
		return types.ApproveItem{Spender: spenderOrEscrow(s.Spender), ItemID: s.Item}, nil
	case types.TransferCurrency{}.CommandName():
		amount, err := parseAmount("amount", s.Amount, decimals)
		if err != nil {
			return nil, err
		}
		return types.TransferCurrency{To: s.To, Amount: amount}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, s.Command)
	}
}

// approvals default to the marketplace.
func spenderOrEscrow(spender string) string {
	if spender == "" {
		return types.EscrowParty
	}
	return spender
}

func parseAmount(field, value string, decimals uint32) (*num.Uint, error) {
	if value == "" {
		return nil, errors.Errorf("missing %s", field)
	}
	u, err := num.ParseUnits(value, decimals)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", field)
	}
	return u, nil
}
