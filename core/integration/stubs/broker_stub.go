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

package stubs

import (
	"sync"

	"code.vegaprotocol.io/marketplace/core/events"
)

// BrokerStub keeps every event sent, grouped by type.
type BrokerStub struct {
	mu   sync.Mutex
	data map[events.Type][]events.Event
	all  []events.Event
}

func NewBrokerStub() *BrokerStub {
	return &BrokerStub{
		data: map[events.Type][]events.Event{},
	}
}

func (b *BrokerStub) Send(e events.Event) {
	b.mu.Lock()
	b.data[e.Type()] = append(b.data[e.Type()], e)
	b.all = append(b.all, e)
	b.mu.Unlock()
}

func (b *BrokerStub) SendBatch(evts []events.Event) {
	for _, e := range evts {
		b.Send(e)
	}
}

// GetBatch returns a copy of the events of the given type, in the order
// they were sent.
func (b *BrokerStub) GetBatch(t events.Type) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event{}, b.data[t]...)
}

// GetAll returns a copy of every event, in the order they were sent.
func (b *BrokerStub) GetAll() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event{}, b.all...)
}

func (b *BrokerStub) GetTxErrors() []*events.TxErr {
	batch := b.GetBatch(events.TxErrEvent)
	ret := make([]*events.TxErr, 0, len(batch))
	for _, e := range batch {
		ret = append(ret, e.(*events.TxErr))
	}
	return ret
}

// GetMarketplaceEvents returns the events emitted by the marketplace
// operations, in the order they were sent.
func (b *BrokerStub) GetMarketplaceEvents() []events.Event {
	types := map[events.Type]struct{}{}
	for _, t := range events.MarketplaceEvents() {
		types[t] = struct{}{}
	}
	ret := []events.Event{}
	for _, e := range b.GetAll() {
		if _, ok := types[e.Type()]; ok {
			ret = append(ret, e)
		}
	}
	return ret
}

// ClearByType drops the events of the given type.
func (b *BrokerStub) ClearByType(t events.Type) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, t)
	kept := b.all[:0]
	for _, e := range b.all {
		if e.Type() != t {
			kept = append(kept, e)
		}
	}
	b.all = kept
}

func (b *BrokerStub) Reset() {
	b.mu.Lock()
	b.data = map[events.Type][]events.Event{}
	b.all = nil
	b.mu.Unlock()
}
