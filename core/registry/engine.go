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
	"errors"

	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/logging"
)

var (
	ErrItemNotFound     = errors.New("item does not exist")
	ErrNotOwner         = errors.New("transfer from incorrect owner")
	ErrNotApproved      = errors.New("caller is not owner nor approved")
	ErrNotMinter        = errors.New("caller is not the minter")
	ErrInvalidParty     = errors.New("invalid party")
	ErrApprovalToOwner  = errors.New("approval to current owner")
	ErrApprovalToCaller = errors.New("approve to caller")
)

// Broker send events.
type Broker interface {
	Send(event events.Event)
}

type item struct {
	id       uint64
	uri      string
	owner    string
	approved string
}

// Engine is the item ownership ledger. Items get sequential ids starting
// at 1 and are only ever created by the minter.
type Engine struct {
	log    *logging.Logger
	cfg    Config
	broker Broker
	minter string

	nextID uint64
	items  map[uint64]*item
	// owner -> operator
	operators map[string]map[string]struct{}
}

// New returns a new registry, only minter can create items.
func New(log *logging.Logger, cfg Config, broker Broker, minter string) *Engine {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Engine{
		log:       log,
		cfg:       cfg,
		broker:    broker,
		minter:    minter,
		nextID:    1,
		items:     map[uint64]*item{},
		operators: map[string]map[string]struct{}{},
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
	cfg.Name, cfg.Symbol = e.cfg.Name, e.cfg.Symbol
	e.cfg = cfg
}

func (e *Engine) Name() string {
	return e.cfg.Name
}

func (e *Engine) Symbol() string {
	return e.cfg.Symbol
}

func (e *Engine) Minter() string {
	return e.minter
}

// Mint creates a new item owned by owner and returns its id.
func (e *Engine) Mint(ctx context.Context, caller, uri, owner string) (uint64, error) {
	if caller != e.minter {
		return 0, ErrNotMinter
	}
	if owner == "" {
		return 0, ErrInvalidParty
	}

	id := e.nextID
	e.nextID++
	e.items[id] = &item{
		id:    id,
		uri:   uri,
		owner: owner,
	}

	e.log.Debug("item minted",
		logging.ItemID(id),
		logging.PartyID(owner),
		logging.String("uri", uri),
	)
	e.broker.Send(events.NewItemTransferEvent(ctx, "", owner, id))
	return id, nil
}

// OwnerOf returns the current owner of the item.
func (e *Engine) OwnerOf(id uint64) (string, error) {
	it, ok := e.items[id]
	if !ok {
		return "", ErrItemNotFound
	}
	return it.owner, nil
}

// TokenURI returns the uri the item was created with.
func (e *Engine) TokenURI(id uint64) (string, error) {
	it, ok := e.items[id]
	if !ok {
		return "", ErrItemNotFound
	}
	return it.uri, nil
}

// Approve allows spender to transfer the item once, an empty spender
// clears the approval.
func (e *Engine) Approve(ctx context.Context, caller, spender string, id uint64) error {
	it, ok := e.items[id]
	if !ok {
		return ErrItemNotFound
	}
	if spender == it.owner {
		return ErrApprovalToOwner
	}
	if caller != it.owner && !e.IsApprovedForAll(it.owner, caller) {
		return ErrNotApproved
	}

	it.approved = spender
	e.broker.Send(events.NewItemApprovalEvent(ctx, it.owner, spender, id))
	return nil
}

// GetApproved returns the party approved for the item, if any.
func (e *Engine) GetApproved(id uint64) (string, error) {
	it, ok := e.items[id]
	if !ok {
		return "", ErrItemNotFound
	}
	return it.approved, nil
}

// SetApprovalForAll allows or forbids operator to manage all the items of
// owner.
func (e *Engine) SetApprovalForAll(_ context.Context, owner, operator string, approved bool) error {
	if owner == "" || operator == "" {
		return ErrInvalidParty
	}
	if owner == operator {
		return ErrApprovalToCaller
	}

	if approved {
		if _, ok := e.operators[owner]; !ok {
			e.operators[owner] = map[string]struct{}{}
		}
		e.operators[owner][operator] = struct{}{}
	} else if ops, ok := e.operators[owner]; ok {
		delete(ops, operator)
		if len(ops) == 0 {
			delete(e.operators, owner)
		}
	}

	e.log.Debug("operator approval updated",
		logging.PartyID(owner),
		logging.String("operator", operator),
		logging.Bool("approved", approved),
	)
	return nil
}

func (e *Engine) isApprovedOrOwner(it *item, caller string) bool {
	if caller == "" {
		return false
	}
	return caller == it.owner || caller == it.approved || e.IsApprovedForAll(it.owner, caller)
}

func (e *Engine) IsApprovedForAll(owner, operator string) bool {
	_, ok := e.operators[owner][operator]
	return ok
}

// TransferFrom moves the item from its owner to to. The caller must be the
// owner, the approved party or an operator of the owner. The single item
// approval is cleared.
func (e *Engine) TransferFrom(ctx context.Context, caller, from, to string, id uint64) error {
	it, ok := e.items[id]
	if !ok {
		return ErrItemNotFound
	}
	if it.owner != from {
		return ErrNotOwner
	}
	if to == "" {
		return ErrInvalidParty
	}
	if !e.isApprovedOrOwner(it, caller) {
		return ErrNotApproved
	}

	it.approved = ""
	it.owner = to

	e.log.Debug("item transferred",
		logging.ItemID(id),
		logging.String("from", from),
		logging.String("to", to),
	)
	e.broker.Send(events.NewItemTransferEvent(ctx, from, to, id))
	return nil
}
