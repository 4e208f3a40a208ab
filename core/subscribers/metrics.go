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
	"code.vegaprotocol.io/marketplace/core/metrics"
	"code.vegaprotocol.io/marketplace/core/types"
	"code.vegaprotocol.io/marketplace/libs/num"
)

// TE - TransferEvent.
type TE interface {
	From() string
	To() string
}

// Ledger is the settlement currency the escrow balance is read from.
type Ledger interface {
	BalanceOf(party string) *num.Uint
	Symbol() string
	Decimals() uint32
}

// Metrics counts every event going through the broker and keeps the
// escrow balance gauge up to date.
type Metrics struct {
	*Base
	ledger Ledger
}

func NewMetrics(ledger Ledger) *Metrics {
	m := &Metrics{
		Base:   &Base{},
		ledger: ledger,
	}
	m.updateEscrow()
	return m
}

func (m *Metrics) Push(evts ...events.Event) {
	names := make([]string, 0, len(evts))
	escrowMoved := false
	for _, e := range evts {
		names = append(names, e.Type().String())
		if e.Type() != events.CurrencyTransferEvent {
			continue
		}
		if te, ok := e.(TE); ok && (te.From() == types.EscrowParty || te.To() == types.EscrowParty) {
			escrowMoved = true
		}
	}
	metrics.EventCounterInc(names...)
	if escrowMoved {
		m.updateEscrow()
	}
}

func (m *Metrics) updateEscrow() {
	metrics.EscrowBalanceSet(m.ledger.Symbol(), m.ledger.BalanceOf(types.EscrowParty), m.ledger.Decimals())
}

// Types returns nil, the subscriber receives every event.
func (m *Metrics) Types() []events.Type {
	return nil
}
