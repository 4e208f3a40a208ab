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
	"errors"

	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/libs/num"
	"code.vegaprotocol.io/marketplace/logging"
)

var (
	ErrInvalidParty          = errors.New("invalid party")
	ErrInsufficientBalance   = errors.New("transfer amount exceeds balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrSupplyOverflow        = errors.New("total supply overflow")
)

// Broker send events.
type Broker interface {
	Send(event events.Event)
}

// Engine is the fungible settlement currency ledger. Every check is done
// before any balance moves, a failed call leaves the ledger unchanged.
type Engine struct {
	log    *logging.Logger
	cfg    Config
	broker Broker

	totalSupply *num.Uint
	balances    map[string]*num.Uint
	// owner -> spender -> amount
	allowances map[string]map[string]*num.Uint
}

// New returns a new currency engine.
func New(log *logging.Logger, cfg Config, broker Broker) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		log:         log,
		cfg:         cfg,
		broker:      broker,
		totalSupply: num.UintZero(),
		balances:    map[string]*num.Uint{},
		allowances:  map[string]map[string]*num.Uint{},
	}
}

// ReloadConf updates the internal configuration.
func (e *Engine) ReloadConf(cfg Config) {
	e.log.Info("reloading configuration")
	if e.log.GetLevel() != cfg.Level.Get() {
		e.log.Info("updating log level",
			logging.String("old", e.log.GetLevelString()),
			logging.String("new", cfg.Level.String()),
		)
		e.log.SetLevel(cfg.Level.Get())
	}
	// symbol and decimals are fixed for the lifetime of the ledger
	cfg.Symbol, cfg.Decimals = e.cfg.Symbol, e.cfg.Decimals
	e.cfg = cfg
}

func (e *Engine) Symbol() string {
	return e.cfg.Symbol
}

func (e *Engine) Decimals() uint32 {
	return e.cfg.Decimals
}

// Mint creates new currency and credits it to the party.
func (e *Engine) Mint(ctx context.Context, party string, amount *num.Uint) error {
	if party == "" {
		return ErrInvalidParty
	}
	supply, overflow := num.UintZero().AddOverflow(e.totalSupply, amount)
	if overflow {
		return ErrSupplyOverflow
	}
	e.totalSupply = supply
	e.credit(party, amount)

	e.log.Debug("currency minted",
		logging.PartyID(party),
		logging.BigUint("amount", amount),
	)
	e.broker.Send(events.NewCurrencyTransferEvent(ctx, "", party, amount))
	return nil
}

func (e *Engine) TotalSupply() *num.Uint {
	return e.totalSupply.Clone()
}

// BalanceOf returns the balance of the party, zero for unknown parties.
func (e *Engine) BalanceOf(party string) *num.Uint {
	if b, ok := e.balances[party]; ok {
		return b.Clone()
	}
	return num.UintZero()
}

// Transfer moves amount from the balance of from to the balance of to.
func (e *Engine) Transfer(ctx context.Context, from, to string, amount *num.Uint) error {
	if from == "" || to == "" {
		return ErrInvalidParty
	}
	if e.BalanceOf(from).LT(amount) {
		return ErrInsufficientBalance
	}
	e.move(ctx, from, to, amount)
	return nil
}

// Approve sets the amount spender can transfer out of the owner balance,
// replacing any previous allowance.
func (e *Engine) Approve(ctx context.Context, owner, spender string, amount *num.Uint) error {
	if owner == "" || spender == "" {
		return ErrInvalidParty
	}
	if _, ok := e.allowances[owner]; !ok {
		e.allowances[owner] = map[string]*num.Uint{}
	}
	if amount.IsZero() {
		delete(e.allowances[owner], spender)
		if len(e.allowances[owner]) == 0 {
			delete(e.allowances, owner)
		}
	} else {
		e.allowances[owner][spender] = amount.Clone()
	}
	e.broker.Send(events.NewCurrencyApprovalEvent(ctx, owner, spender, amount))
	return nil
}

// Allowance returns what spender can still transfer on behalf of owner.
func (e *Engine) Allowance(owner, spender string) *num.Uint {
	if a, ok := e.allowances[owner][spender]; ok {
		return a.Clone()
	}
	return num.UintZero()
}

// TransferFrom moves amount from owner to to, spending the allowance owner
// gave to spender. A maximum allowance is never decreased.
func (e *Engine) TransferFrom(ctx context.Context, spender, owner, to string, amount *num.Uint) error {
	if spender == "" || owner == "" || to == "" {
		return ErrInvalidParty
	}
	allowance := e.Allowance(owner, spender)
	if allowance.LT(amount) {
		return ErrInsufficientAllowance
	}
	if e.BalanceOf(owner).LT(amount) {
		return ErrInsufficientBalance
	}

	if !allowance.EQ(num.MaxUint()) {
		left := allowance.Sub(allowance, amount)
		if left.IsZero() {
			delete(e.allowances[owner], spender)
		} else {
			e.allowances[owner][spender] = left
		}
		e.broker.Send(events.NewCurrencyApprovalEvent(ctx, owner, spender, left))
	}
	e.move(ctx, owner, to, amount)
	return nil
}

func (e *Engine) move(ctx context.Context, from, to string, amount *num.Uint) {
	e.debit(from, amount)
	e.credit(to, amount)

	e.log.Debug("currency transferred",
		logging.String("from", from),
		logging.String("to", to),
		logging.BigUint("amount", amount),
	)
	e.broker.Send(events.NewCurrencyTransferEvent(ctx, from, to, amount))
}

func (e *Engine) credit(party string, amount *num.Uint) {
	if b, ok := e.balances[party]; ok {
		b.Add(b, amount)
		return
	}
	if !amount.IsZero() {
		e.balances[party] = amount.Clone()
	}
}

// debit expects the balance to be checked already.
func (e *Engine) debit(party string, amount *num.Uint) {
	b, ok := e.balances[party]
	if !ok {
		return
	}
	b.Sub(b, amount)
	if b.IsZero() {
		delete(e.balances, party)
	}
}
