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
	"time"

	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/libs/num"
	"code.vegaprotocol.io/marketplace/logging"
)

// Registry is the item ledger the marketplace mints through and holds
// items in.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.vegaprotocol.io/marketplace/core/marketplace Registry,Currency,TimeService
type Registry interface {
	Mint(ctx context.Context, caller, uri, owner string) (uint64, error)
	OwnerOf(id uint64) (string, error)
	TransferFrom(ctx context.Context, caller, from, to string, id uint64) error
}

// Currency is the settlement currency ledger.
type Currency interface {
	Transfer(ctx context.Context, from, to string, amount *num.Uint) error
	TransferFrom(ctx context.Context, spender, owner, to string, amount *num.Uint) error
	BalanceOf(party string) *num.Uint
	Allowance(owner, spender string) *num.Uint
}

// TimeService provide the current time of the node.
type TimeService interface {
	GetTimeNow() time.Time
}

// Broker send events.
type Broker interface {
	Send(event events.Event)
}

// Engine holds the fixed-price listings and the auctions. It owns the
// items and the currency it holds in escrow under types.EscrowParty.
type Engine struct {
	log         *logging.Logger
	cfg         Config
	broker      Broker
	timeService TimeService
	registry    Registry
	currency    Currency

	listings map[uint64]*types.Listing
	auctions map[uint64]*types.Auction
	expiring *expiringAuctions

	// set while a state changing call is in progress
	inFlight bool
}

// New returns a new marketplace engine.
func New(
	log *logging.Logger,
	cfg Config,
	broker Broker,
	timeService TimeService,
	registry Registry,
	currency Currency,
) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		log:         log,
		cfg:         cfg,
		broker:      broker,
		timeService: timeService,
		registry:    registry,
		currency:    currency,
		listings:    map[uint64]*types.Listing{},
		auctions:    map[uint64]*types.Auction{},
		expiring:    newExpiringAuctions(),
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

	e.cfg = cfg
}

// enter marks the engine busy for the duration of a state changing call,
// any call made back into the engine by a collaborator in the meantime
// is rejected.
func (e *Engine) enter() error {
	if e.inFlight {
		e.log.Warn("reentrant call rejected")
		return types.ErrReentrantCall
	}
	e.inFlight = true
	return nil
}

func (e *Engine) exit() {
	e.inFlight = false
}

// GetListing returns a copy of the last listing recorded for the item.
func (e *Engine) GetListing(itemID uint64) (types.Listing, error) {
	l, ok := e.listings[itemID]
	if !ok {
		return types.Listing{}, types.ErrNoActiveListing
	}
	return *l.Clone(), nil
}

// GetAuction returns a copy of the last auction recorded for the item.
func (e *Engine) GetAuction(itemID uint64) (types.Auction, error) {
	a, ok := e.auctions[itemID]
	if !ok {
		return types.Auction{}, types.ErrNoActiveAuction
	}
	return *a.Clone(), nil
}

// EscrowedFor returns the currency held in escrow for the item.
func (e *Engine) EscrowedFor(itemID uint64) *num.Uint {
	a, ok := e.auctions[itemID]
	if !ok || !a.Active || !a.HasBids() {
		return num.UintZero()
	}
	return a.CurrentPrice.Clone()
}

// TotalEscrowed returns the currency held in escrow for all the active
// auctions. It always equals the currency balance of the escrow party.
func (e *Engine) TotalEscrowed() *num.Uint {
	total := num.UintZero()
	for _, a := range e.auctions {
		if a.Active && a.HasBids() {
			total.Add(total, a.CurrentPrice)
		}
	}
	return total
}

// FinishableAuctions returns the ids of the active auctions which can be
// finished at the given time, oldest first.
func (e *Engine) FinishableAuctions(now time.Time) []uint64 {
	return e.expiring.endedAt(now.Add(-e.cfg.AuctionDuration.Get()))
}

// AuctionsEndedBetween returns the ids of the active auctions which became
// finishable after from and at or before to, oldest first.
func (e *Engine) AuctionsEndedBetween(from, to time.Time) []uint64 {
	d := e.cfg.AuctionDuration.Get()
	return e.expiring.endedBetween(from.Add(-d), to.Add(-d))
}

func (e *Engine) isListed(itemID uint64) bool {
	if l, ok := e.listings[itemID]; ok && l.Active {
		return true
	}
	if a, ok := e.auctions[itemID]; ok && a.Active {
		return true
	}
	return false
}

// ensureInEscrow checks the marketplace holds the item before moving it
// out of escrow.
func (e *Engine) ensureInEscrow(itemID uint64) error {
	owner, err := e.registry.OwnerOf(itemID)
	if err != nil {
		return err
	}
	if owner != types.EscrowParty {
		e.log.Error("listed item not held in escrow",
			logging.ItemID(itemID),
			logging.String("owner", owner),
		)
		return types.ErrItemNotInEscrow
	}
	return nil
}

// ensureEscrowCovers checks the marketplace currency balance covers amount.
func (e *Engine) ensureEscrowCovers(amount *num.Uint) error {
	if balance := e.currency.BalanceOf(types.EscrowParty); balance.LT(amount) {
		e.log.Error("escrow balance too low",
			logging.BigUint("balance", balance),
			logging.BigUint("expected", amount),
		)
		return types.ErrInsufficientEscrow
	}
	return nil
}

// releaseItem moves an item out of escrow. Custody was checked beforehand
// so a failure means the registry and the engine disagree.
func (e *Engine) releaseItem(ctx context.Context, itemID uint64, to string) {
	if err := e.registry.TransferFrom(ctx, types.EscrowParty, types.EscrowParty, to, itemID); err != nil {
		e.log.Panic("could not release item from escrow",
			logging.ItemID(itemID),
			logging.PartyID(to),
			logging.Error(err),
		)
	}
}

// releaseFunds pays out currency held in escrow, failures are handled like
// in releaseItem.
func (e *Engine) releaseFunds(ctx context.Context, to string, amount *num.Uint) {
	if err := e.currency.Transfer(ctx, types.EscrowParty, to, amount); err != nil {
		e.log.Panic("could not release funds from escrow",
			logging.PartyID(to),
			logging.BigUint("amount", amount),
			logging.Error(err),
		)
	}
}
