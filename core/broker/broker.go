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

package broker

import (
	"sort"
	"sync"

	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/logging"
)

// Subscriber receives the events of the types it subscribed to, in the
// order they were sent.
type Subscriber interface {
	Push(val ...events.Event)
	Types() []events.Type
	SetID(id int)
	ID() int
}

// BrokerI is the interface of the broker used by the engines and the
// processor.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/broker_mock.go -package mocks code.vegaprotocol.io/marketplace/core/broker BrokerI
type BrokerI interface {
	Send(event events.Event)
	SendBatch(evts []events.Event)
	Subscribe(s Subscriber) int
	SubscribeBatch(subs ...Subscriber)
	Unsubscribe(k int)
}

// Broker dispatches events synchronously: Send returns once every
// subscriber interested in the event has been pushed the event.
type Broker struct {
	log *logging.Logger
	cfg Config

	mu    sync.Mutex
	tSubs map[events.Type]map[int]Subscriber
	subs  map[int]Subscriber
	keys  []int
	seq   uint64
}

func New(log *logging.Logger, config Config) *Broker {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Broker{
		log:   log,
		cfg:   config,
		tSubs: map[events.Type]map[int]Subscriber{},
		subs:  map[int]Subscriber{},
		keys:  []int{},
	}
}

// ReloadConf updates the internal configuration.
func (b *Broker) ReloadConf(cfg Config) {
	b.log.Info("reloading configuration")
	if b.log.GetLevel() != cfg.Level.Get() {
		b.log.Info("updating log level",
			logging.String("old", b.log.GetLevelString()),
			logging.String("new", cfg.Level.String()),
		)
		b.log.SetLevel(cfg.Level.Get())
	}

	b.mu.Lock()
	b.cfg = cfg
	b.mu.Unlock()
}

func (b *Broker) Send(event events.Event) {
	b.SendBatch([]events.Event{event})
}

// SendBatch sends all events in one go, subscribers receive them in order.
func (b *Broker) SendBatch(evts []events.Event) {
	if len(evts) == 0 {
		return
	}

	b.mu.Lock()
	for _, e := range evts {
		b.seq++
		e.SetSequenceID(b.seq)
		if b.cfg.LogEvents {
			b.log.Debug("sending event",
				logging.EventType(e.Type()),
				logging.Uint64("sequence", e.Sequence()),
				logging.String("trace-id", e.TraceID()),
			)
		}
	}
	// group per subscriber so each receives a single push, in send order
	batches := map[int][]events.Event{}
	for _, e := range evts {
		for k := range b.getSubsByType(e.Type()) {
			batches[k] = append(batches[k], e)
		}
	}
	targets := make([]Subscriber, 0, len(batches))
	keys := make([]int, 0, len(batches))
	for k := range batches {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		targets = append(targets, b.subs[k])
	}
	b.mu.Unlock()

	// push outside of the lock, subscribers may send events themselves
	for i, sub := range targets {
		sub.Push(batches[keys[i]]...)
	}
}

func (b *Broker) getSubsByType(t events.Type) map[int]Subscriber {
	subs := map[int]Subscriber{}
	for k, s := range b.tSubs[t] {
		subs[k] = s
	}
	// subscribers to ALL get everything but the tx errors
	if t != events.TxErrEvent {
		for k, s := range b.tSubs[events.All] {
			subs[k] = s
		}
	}
	return subs
}

func (b *Broker) Subscribe(s Subscriber) int {
	b.mu.Lock()
	k := b.subscribe(s)
	b.mu.Unlock()
	s.SetID(k)
	return k
}

func (b *Broker) SubscribeBatch(subs ...Subscriber) {
	for _, s := range subs {
		b.Subscribe(s)
	}
}

func (b *Broker) subscribe(s Subscriber) int {
	k := b.getKey()
	b.subs[k] = s
	types := s.Types()
	// a subscriber listing ALL next to other types gets everything anyway
	isAll := len(types) == 0
	for _, t := range types {
		if t == events.All {
			isAll = true
			break
		}
	}
	if isAll {
		types = []events.Type{events.All}
	}
	for _, t := range types {
		if _, ok := b.tSubs[t]; !ok {
			b.tSubs[t] = map[int]Subscriber{}
		}
		b.tSubs[t][k] = s
	}
	return k
}

func (b *Broker) Unsubscribe(k int) {
	b.mu.Lock()
	b.rmSubs(k)
	b.mu.Unlock()
}

func (b *Broker) getKey() int {
	if len(b.keys) > 0 {
		k := b.keys[0]
		b.keys = b.keys[1:]
		return k
	}
	return len(b.subs) + 1
}

func (b *Broker) rmSubs(keys ...int) {
	for _, k := range keys {
		if _, ok := b.subs[k]; !ok {
			continue
		}
		for _, m := range b.tSubs {
			delete(m, k)
		}
		delete(b.subs, k)
		b.keys = append(b.keys, k)
	}
}
