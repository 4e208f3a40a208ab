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

package types

import (
	"context"
	"errors"
)

var (
	ErrSnapshotKeyDoesNotExist  = errors.New("unknown key for snapshot")
	ErrInvalidSnapshotNamespace = errors.New("invalid snapshot namespace")
)

// StateProvider is implemented by every engine whose state is part of a
// snapshot. It lives here so engines don't need to import the snapshot
// package.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/state_provider_mock.go -package mocks code.vegaprotocol.io/marketplace/core/types StateProvider
type StateProvider interface {
	Namespace() SnapshotNamespace
	Keys() []string
	GetState(key string) ([]byte, error)
	LoadState(ctx context.Context, key string, state []byte) error
}

type SnapshotNamespace string

const (
	CurrencySnapshot    SnapshotNamespace = "currency"
	RegistrySnapshot    SnapshotNamespace = "registry"
	MarketplaceSnapshot SnapshotNamespace = "marketplace"
	TimeSnapshot        SnapshotNamespace = "time"
)

func (n SnapshotNamespace) String() string {
	return string(n)
}

// SnapshotKey returns the fully qualified key of a provider entry.
func (n SnapshotNamespace) SnapshotKey(key string) string {
	return string(n) + "." + key
}

// PayloadCurrency is the serialised state of the settlement currency.
type PayloadCurrency struct {
	Balances   []*PartyAmount `json:"balances"`
	Allowances []*Allowance   `json:"allowances"`
}

type PartyAmount struct {
	Party  string `json:"party"`
	Amount string `json:"amount"`
}

type Allowance struct {
	Owner   string `json:"owner"`
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

// PayloadRegistry is the serialised state of the item registry.
type PayloadRegistry struct {
	NextID    uint64      `json:"next_id"`
	Items     []*Item     `json:"items"`
	Operators []*Operator `json:"operators"`
}

type Item struct {
	ID       uint64 `json:"id"`
	URI      string `json:"uri"`
	Owner    string `json:"owner"`
	Approved string `json:"approved,omitempty"`
}

type Operator struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
}

// PayloadMarketplace is the serialised state of the listing and auction
// books.
type PayloadMarketplace struct {
	Listings []*Listing `json:"listings"`
	Auctions []*Auction `json:"auctions"`
}
