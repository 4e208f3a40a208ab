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

package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/core/metrics"
	"code.vegaprotocol.io/marketplace/core/types"
	vgcontext "code.vegaprotocol.io/marketplace/libs/context"
	"code.vegaprotocol.io/marketplace/libs/crypto"
	"code.vegaprotocol.io/marketplace/libs/num"
	"code.vegaprotocol.io/marketplace/logging"

	"github.com/google/uuid"
)

var (
	ErrUnknownCommand      = errors.New("unknown command")
	ErrProcessorNotRunning = errors.New("processor is not running")
)

// Marketplace is the exchange engine serving the item and trading
// commands, listings and auctions alike.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/mocks.go -package mocks code.vegaprotocol.io/marketplace/core/processor Marketplace,Currency,Registry
type Marketplace interface {
	CreateItem(ctx context.Context, caller, uri, owner string) (uint64, error)
	ListItem(ctx context.Context, party string, itemID uint64, price *num.Uint) error
	Cancel(ctx context.Context, party string, itemID uint64) error
	BuyItem(ctx context.Context, party string, itemID uint64) error
	ListItemOnAuction(ctx context.Context, party string, itemID uint64, minPrice *num.Uint) error
	CancelAuction(ctx context.Context, party string, itemID uint64) error
	MakeBid(ctx context.Context, party string, itemID uint64, price *num.Uint) error
	FinishAuction(ctx context.Context, party string, itemID uint64) (bool, error)
}

// Currency is the part of the settlement currency parties drive directly.
type Currency interface {
	Approve(ctx context.Context, owner, spender string, amount *num.Uint) error
	Transfer(ctx context.Context, from, to string, amount *num.Uint) error
}

// Registry is the part of the item registry parties drive directly.
type Registry interface {
	Approve(ctx context.Context, caller, spender string, itemID uint64) error
}

// Broker send events.
type Broker interface {
	Send(event events.Event)
}

// Result is what a successful command returns to its submitter.
type Result struct {
	// ItemID is the item the command applied to, the new item for CreateItem.
	ItemID uint64
	// Success is the outcome of FinishAuction, true for every other command.
	Success bool
}

type request struct {
	ctx   context.Context
	party string
	cmd   types.Command
	done  chan response
}

type response struct {
	res Result
	err error
}

// Processor applies commands one at a time, in the order they are
// received, so the engines never see concurrent calls.
type Processor struct {
	log    *logging.Logger
	cfg    Config
	broker Broker

	mkt Marketplace
	ccy Currency
	reg Registry

	// serialises Deliver between Run and direct callers
	mu      sync.Mutex
	queue   chan *request
	running atomic.Bool
}

func New(log *logging.Logger, cfg Config, broker Broker, mkt Marketplace, ccy Currency, reg Registry) *Processor {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	size := cfg.QueueSize
	if size < 0 {
		size = 0
	}
	return &Processor{
		log:    log,
		cfg:    cfg,
		broker: broker,
		mkt:    mkt,
		ccy:    ccy,
		reg:    reg,
		queue:  make(chan *request, size),
	}
}

// ReloadConf updates the internal configuration.
func (p *Processor) ReloadConf(cfg Config) {
	p.log.Info("reloading configuration")
	if p.log.GetLevel() != cfg.Level.Get() {
		p.log.Info("updating log level",
			logging.String("old", p.log.GetLevelString()),
			logging.String("new", cfg.Level.String()),
		)
		p.log.SetLevel(cfg.Level.Get())
	}
	// the queue is sized once
	cfg.QueueSize = p.cfg.QueueSize
	p.cfg = cfg
}

// Run applies the submitted commands until the context is cancelled.
func (p *Processor) Run(ctx context.Context) error {
	p.running.Store(true)
	defer p.running.Store(false)

	p.log.Info("processor started")
	for {
		select {
		case <-ctx.Done():
			p.log.Info("processor stopped")
			return ctx.Err()
		case req := <-p.queue:
			res, err := p.Deliver(req.ctx, req.party, req.cmd)
			req.done <- response{res: res, err: err}
		}
	}
}

// Submit queues the command and waits for it to be applied by Run.
func (p *Processor) Submit(ctx context.Context, party string, cmd types.Command) (Result, error) {
	if !p.running.Load() {
		return Result{}, ErrProcessorNotRunning
	}

	req := &request{
		ctx:   ctx,
		party: party,
		cmd:   cmd,
		done:  make(chan response, 1),
	}
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case p.queue <- req:
	}

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case resp := <-req.done:
		return resp.res, resp.err
	}
}

// Deliver applies a single command on behalf of the party. A failed
// command leaves every ledger unchanged and is reported on the bus as
// a TxErr event.
func (p *Processor) Deliver(ctx context.Context, party string, cmd types.Command) (Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx = vgcontext.WithTraceID(ctx, uuid.NewString())
	party = crypto.NormalisePartyID(party)

	name := "unknown"
	if cmd != nil {
		name = cmd.CommandName()
	}

	start := time.Now()
	res, err := p.deliver(ctx, party, cmd)
	metrics.CommandTimeObserve(start, name)

	if err != nil {
		metrics.CommandCounterInc(name, "error")
		if p.log.IsDebug() {
			p.log.Debug("command rejected",
				logging.String("command", name),
				logging.PartyID(party),
				logging.Error(err),
			)
		}
		p.broker.Send(events.NewTxErrEvent(ctx, err, party, cmd))
		return Result{}, err
	}

	metrics.CommandCounterInc(name, "ok")
	return res, nil
}

func (p *Processor) deliver(ctx context.Context, party string, cmd types.Command) (Result, error) {
	if party == "" || party == types.EscrowParty {
		return Result{}, types.ErrInvalidParty
	}

	switch c := cmd.(type) {
	case types.CreateItem:
		owner, err := recipient(c.Owner)
		if err != nil {
			return Result{}, err
		}
		return itemResult(p.mkt.CreateItem(ctx, party, c.URI, owner))
	case types.ListItem:
		return itemResult(c.ItemID, p.mkt.ListItem(ctx, party, c.ItemID, c.Price))
	case types.CancelListing:
		return itemResult(c.ItemID, p.mkt.Cancel(ctx, party, c.ItemID))
	case types.BuyItem:
		return itemResult(c.ItemID, p.mkt.BuyItem(ctx, party, c.ItemID))
	case types.ListItemOnAuction:
		return itemResult(c.ItemID, p.mkt.ListItemOnAuction(ctx, party, c.ItemID, c.MinPrice))
	case types.CancelAuction:
		return itemResult(c.ItemID, p.mkt.CancelAuction(ctx, party, c.ItemID))
	case types.MakeBid:
		return itemResult(c.ItemID, p.mkt.MakeBid(ctx, party, c.ItemID, c.Price))
	case types.FinishAuction:
		success, err := p.mkt.FinishAuction(ctx, party, c.ItemID)
		if err != nil {
			return Result{}, err
		}
		return Result{ItemID: c.ItemID, Success: success}, nil
	case types.ApproveCurrency:
		return itemResult(0, p.ccy.Approve(ctx, party, crypto.NormalisePartyID(c.Spender), amountOrZero(c.Amount)))
	case types.ApproveItem:
		return itemResult(c.ItemID, p.reg.Approve(ctx, party, crypto.NormalisePartyID(c.Spender), c.ItemID))
	case types.TransferCurrency:
		to, err := recipient(c.To)
		if err != nil {
			return Result{}, err
		}
		return itemResult(0, p.ccy.Transfer(ctx, party, to, amountOrZero(c.Amount)))
	default:
		return Result{}, fmt.Errorf("%w: %T", ErrUnknownCommand, cmd)
	}
}

// recipient normalises a party receiving currency or items. Only the
// marketplace moves assets into escrow.
func recipient(party string) (string, error) {
	party = crypto.NormalisePartyID(party)
	if party == types.EscrowParty {
		return "", types.ErrInvalidParty
	}
	return party, nil
}

func itemResult(itemID uint64, err error) (Result, error) {
	if err != nil {
		return Result{}, err
	}
	return Result{ItemID: itemID, Success: true}, nil
}

func amountOrZero(u *num.Uint) *num.Uint {
	if u == nil {
		return num.UintZero()
	}
	return u
}
