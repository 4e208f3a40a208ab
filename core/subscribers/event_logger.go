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

package subscribers

import (
	"code.vegaprotocol.io/marketplace/core/events"
	"code.vegaprotocol.io/marketplace/libs/num"
	"code.vegaprotocol.io/marketplace/logging"

	"go.uber.org/zap"
)

type itemEvt interface {
	ItemID() uint64
}

type priceEvt interface {
	Price() *num.Uint
}

type amountEvt interface {
	Amount() *num.Uint
}

type partyEvt interface {
	PartyID() string
}

// EventLogger writes a line per event, used by the command line runner.
type EventLogger struct {
	*Base
	log   *logging.Logger
	types []events.Type
}

// NewEventLogger returns a subscriber logging the given event types,
// or every event when none are given.
func NewEventLogger(log *logging.Logger, types ...events.Type) *EventLogger {
	return &EventLogger{
		Base:  &Base{},
		log:   log.Named("events"),
		types: types,
	}
}

func (l *EventLogger) Push(evts ...events.Event) {
	for _, e := range evts {
		l.log.Info("event", eventFields(e)...)
	}
}

func (l *EventLogger) Types() []events.Type {
	return l.types
}

func eventFields(e events.Event) []zap.Field {
	fields := []zap.Field{
		logging.EventType(e.Type()),
		logging.Uint64("seq", e.Sequence()),
		logging.String("trace-id", e.TraceID()),
	}
	if et, ok := e.(itemEvt); ok {
		fields = append(fields, logging.ItemID(et.ItemID()))
	}
	if et, ok := e.(priceEvt); ok {
		fields = append(fields, logging.BigUint("price", et.Price()))
	}
	if et, ok := e.(amountEvt); ok {
		fields = append(fields, logging.BigUint("amount", et.Amount()))
	}
	if et, ok := e.(partyEvt); ok {
		fields = append(fields, logging.PartyID(et.PartyID()))
	}

	switch et := e.(type) {
	case *events.ItemCreated:
		fields = append(fields, logging.String("owner", et.Owner()), logging.String("uri", et.URI()))
	case *events.MakeBid:
		fields = append(fields, logging.String("bidder", et.Bidder()))
	case *events.FinishAuction:
		fields = append(fields, logging.Bool("success", et.Success()))
	case *events.CurrencyTransfer:
		fields = append(fields, logging.String("from", et.From()), logging.String("to", et.To()))
	case *events.ItemTransfer:
		fields = append(fields, logging.String("from", et.From()), logging.String("to", et.To()))
	case *events.TxErr:
		fields = append(fields, logging.String("command", et.Command()), logging.String("error", et.ErrMsg()))
	case *events.Time:
		fields = append(fields, logging.Time("now", et.Time()))
	}
	return fields
}
